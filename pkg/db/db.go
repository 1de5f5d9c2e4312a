package db

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
	log "github.com/sirupsen/logrus"
)

// DB holds the database connection pool. Global so the query layer can reach it
// without threading the handle through every call site.
var DB *sqlx.DB

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT DEFAULT '',
	description TEXT DEFAULT '',
	filepath TEXT NOT NULL,
	thumbnail TEXT DEFAULT '',
	duration REAL,
	mime_type TEXT DEFAULT 'video/mp4',
	category TEXT DEFAULT '',
	tags TEXT DEFAULT '[]',
	is_public INTEGER DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	username TEXT DEFAULT '',
	email TEXT DEFAULT '',
	bio TEXT DEFAULT '',
	avatar TEXT DEFAULT ''
);
`

// InitDB opens (creating if needed) the SQLite database at the given path and
// ensures the schema exists. SQLite serializes writers internally, so a single
// connection is enough and sidesteps database-locked errors under concurrent
// ingestions.
func InitDB(databasePath string) error {
	var err error
	DB, err = sqlx.Connect("sqlite3", databasePath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		log.Errorf("Failed to open database at %s: %v", databasePath, err)
		return err
	}

	DB.SetMaxOpenConns(1)

	if _, err = DB.Exec(schema); err != nil {
		log.Errorf("Failed to initialize database schema: %v", err)
		DB.Close()
		return err
	}

	log.Infof("Database initialized at %s", databasePath)
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		if err := DB.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		} else {
			log.Info("Database connection closed.")
		}
	}
}

package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id"`            // primary key, generated in Go (SQLite has no uuid type)
	Username     string    `db:"username"`      // unique username
	Email        string    `db:"email"`         // unique email
	PasswordHash string    `db:"password_hash"` // bcrypt hash
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Video is one row in the asset catalog. Filepath and Thumbnail are relative to
// the data directory; Tags is a JSON-encoded string array. Duration may be NULL
// for rows that predate duration probing.
type Video struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Filepath    string          `db:"filepath"`
	Thumbnail   string          `db:"thumbnail"`
	Duration    sql.NullFloat64 `db:"duration"`
	MimeType    string          `db:"mime_type"`
	Category    string          `db:"category"`
	Tags        string          `db:"tags"`
	IsPublic    bool            `db:"is_public"`
	CreatedAt   time.Time       `db:"created_at"`
}

type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Profile is the single-row (id = 1) owner profile.
type Profile struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Bio      string `db:"bio"`
	Avatar   string `db:"avatar"`
}

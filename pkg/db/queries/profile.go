package queries

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db"
)

// GetProfile returns the single owner profile row, or (nil, nil) if it was
// never saved.
func GetProfile() (*db.Profile, error) {
	profile := &db.Profile{}
	err := db.DB.Get(profile, `SELECT id, username, email, bio, avatar FROM profile WHERE id = 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Errorf("Error loading profile: %v", err)
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return profile, nil
}

// SaveProfile creates or overwrites the single profile row.
func SaveProfile(profile *db.Profile) error {
	profile.ID = 1
	query := `
		INSERT INTO profile (id, username, email, bio, avatar)
		VALUES (:id, :username, :email, :bio, :avatar)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			bio = excluded.bio,
			avatar = excluded.avatar`

	if _, err := db.DB.NamedExec(query, profile); err != nil {
		log.Errorf("Error saving profile: %v", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

package queries

import (
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/staubi82/KlipZ/pkg/db"
)

// CreateCategory inserts a new category. The name is trimmed; uniqueness is
// enforced by the schema and surfaces as an error here.
func CreateCategory(name string) (*db.Category, error) {
	name = strings.TrimSpace(name)

	result, err := db.DB.Exec(`INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		log.Errorf("Error creating category %q: %v", name, err)
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new category id: %w", err)
	}

	return FindCategoryByID(id)
}

// FindCategoryByID returns (nil, nil) when no row exists.
func FindCategoryByID(id int64) (*db.Category, error) {
	category := &db.Category{}
	err := db.DB.Get(category, `SELECT id, name, created_at FROM categories WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Errorf("Error finding category by ID %d: %v", id, err)
		return nil, fmt.Errorf("error finding category by ID: %w", err)
	}
	return category, nil
}

// FindCategoryByName returns (nil, nil) when no row exists.
func FindCategoryByName(name string) (*db.Category, error) {
	category := &db.Category{}
	err := db.DB.Get(category, `SELECT id, name, created_at FROM categories WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Errorf("Error finding category by name %q: %v", name, err)
		return nil, fmt.Errorf("error finding category by name: %w", err)
	}
	return category, nil
}

func ListCategories() ([]db.Category, error) {
	var categories []db.Category
	err := db.DB.Select(&categories, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		log.Errorf("Error listing categories: %v", err)
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory blanks the category label on matching videos, then removes the
// category row. Deliberately two separate statements, not a transaction: the
// original behavior keeps the fan-out update visible even if the row delete
// fails, and a category delete must never cascade into video deletes.
func DeleteCategory(id int64) error {
	category, err := FindCategoryByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return sql.ErrNoRows
	}

	cleared, err := ClearVideoCategory(category.Name)
	if err != nil {
		return err
	}
	if cleared > 0 {
		log.Infof("Cleared category %q from %d videos.", category.Name, cleared)
	}

	if _, err := db.DB.Exec(`DELETE FROM categories WHERE id = ?`, id); err != nil {
		log.Errorf("Error deleting category with ID %d: %v", id, err)
		return fmt.Errorf("failed to delete category: %w", err)
	}

	log.Infof("Category %q (ID: %d) deleted.", category.Name, id)
	return nil
}

package vault

import (
	"fmt"
	"strings"
)

// Category pairs a category name with its display color.
type Category struct {
	Name  string
	Color string
}

// defaultCategories is the fixed set available to every user.
var defaultCategories = []Category{
	{"Social Media", "#3b5998"},
	{"Banking", "#28a745"},
	{"Email", "#dc3545"},
	{"Work", "#ffc107"},
	{"Shopping", "#e91e63"},
	{"Entertainment", "#9c27b0"},
	{"Other", "#6c757d"},
}

// fallbackColor is used for categories without a configured color.
const fallbackColor = "#6c757d"

// DefaultCategories returns the built-in category set.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// IsDefaultCategory reports whether name matches a built-in category,
// case-insensitively.
func IsDefaultCategory(name string) bool {
	for _, c := range defaultCategories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// Categories returns the default set followed by the user's custom
// categories sorted by name.
func (v *Vault) Categories(userID int64) ([]Category, error) {
	out := DefaultCategories()

	rows, err := v.db.Query(
		`SELECT category_name, COALESCE(color, '') FROM custom_categories
		WHERE user_id = ? ORDER BY category_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("vault: failed to scan category: %w", err)
		}
		if c.Color == "" {
			c.Color = fallbackColor
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddCategory registers a custom category for a user. The name must not
// collide case-insensitively with a default category or with one of the
// user's existing custom categories.
func (v *Vault) AddCategory(userID int64, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name must not be empty", ErrInvalidInput)
	}
	if IsDefaultCategory(name) {
		return fmt.Errorf("%w: %q is a built-in category", ErrInvalidInput, name)
	}

	var n int
	err := v.db.QueryRow(
		`SELECT COUNT(*) FROM custom_categories WHERE user_id = ? AND LOWER(category_name) = LOWER(?)`,
		userID, name,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("vault: failed to check category: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q already exists", ErrInvalidInput, name)
	}

	if color == "" {
		color = fallbackColor
	}
	_, err = v.db.Exec(
		`INSERT INTO custom_categories (user_id, category_name, color) VALUES (?, ?, ?)`,
		userID, name, color,
	)
	if err != nil {
		return fmt.Errorf("vault: failed to add category: %w", err)
	}
	return nil
}

// DeleteCategory removes a user's custom category. Built-in categories
// cannot be deleted.
func (v *Vault) DeleteCategory(userID int64, name string) error {
	if IsDefaultCategory(name) {
		return fmt.Errorf("%w: cannot delete built-in category %q", ErrInvalidInput, name)
	}

	res, err := v.db.Exec(
		`DELETE FROM custom_categories WHERE user_id = ? AND category_name = ?`,
		userID, name,
	)
	if err != nil {
		return fmt.Errorf("vault: failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("vault: failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryColor returns the display color for a category name, falling
// back to the neutral gray when the category has no configured color.
func (v *Vault) CategoryColor(userID int64, name string) string {
	for _, c := range defaultCategories {
		if strings.EqualFold(c.Name, name) {
			return c.Color
		}
	}
	var color string
	err := v.db.QueryRow(
		`SELECT COALESCE(color, '') FROM custom_categories WHERE user_id = ? AND LOWER(category_name) = LOWER(?)`,
		userID, name,
	).Scan(&color)
	if err != nil || color == "" {
		return fallbackColor
	}
	return color
}

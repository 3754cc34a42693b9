package category

import "strings"

// Category is a top-level grouping in the catalog. Deactivating one hides
// every subcategory and product underneath it; that cascade lives in the
// catalog engine, not here.
type Category struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

const (
	// NameMinLen and NameMaxLen bound the category name length.
	NameMinLen = 2
	NameMaxLen = 100
)

// ValidateName reports the validation problems of a category name.
// Surrounding whitespace never counts toward the length.
func ValidateName(name string) []string {
	errs := []string{}
	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "name is required")
		return errs
	}
	if len(name) < NameMinLen || len(name) > NameMaxLen {
		errs = append(errs, "name must be between 2 and 100 characters")
	}
	return errs
}

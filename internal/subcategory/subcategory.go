package subcategory

import "strings"

// Subcategory groups products under a parent category. Names are unique per
// category, so two categories may both contain a "Soda" subcategory.
type Subcategory struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CategoryID  int     `json:"categoryId"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// ValidateName reports the validation problems of a subcategory name.
// Surrounding whitespace never counts toward the length.
func ValidateName(name string) []string {
	errs := []string{}
	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "name is required")
		return errs
	}
	if len(name) < 2 || len(name) > 100 {
		errs = append(errs, "name must be between 2 and 100 characters")
	}
	return errs
}

package user

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password,omitempty"`
	Role      string  `json:"role"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// ValidRole reports whether the value is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleStaff || role == RoleAdmin
}

// CanManageCatalog reports whether the role may hit the admin surface.
// Staff can manage the catalog but not other users.
func CanManageCatalog(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

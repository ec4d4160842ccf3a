package services

// Roles the dashboard ships layouts and menus for. Users may carry any other
// role string; those simply have no dashboard.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// MenuRoles are the roles whose menu structures are managed.
func MenuRoles() []string {
	return []string{RoleAdmin, RoleUser}
}

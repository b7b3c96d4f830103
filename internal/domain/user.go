package domain

// Role classifies a user's access level.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleMember  Role = "Member"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// User represents a platform account. Accounts are written by the CRUD
// collaborator; this module only reads them.
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"USERNAME"`
	PasswordHash string `json:"-"`
	Email        string `json:"EMAIL"`
	Role         Role   `json:"ROLE"`
}

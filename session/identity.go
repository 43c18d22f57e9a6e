package session

// Role represents a user's access level. Roles form a total order
// (operator < manager < admin); comparisons go through Rank so an
// unrecognized role never satisfies any requirement.
type Role string

const (
	RoleOperator Role = "operator" // Submits entries for their own unit
	RoleManager  Role = "manager"  // Views every unit
	RoleAdmin    Role = "admin"    // Manages units and users
)

// Rank returns the role's position in the access order. Unknown roles rank
// zero and therefore satisfy no requirement.
func (r Role) Rank() int {
	switch r {
	case RoleOperator:
		return 1
	case RoleManager:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

func (r Role) Known() bool {
	return r.Rank() > 0
}

// Identity is the authenticated user's profile. At most one Identity is live
// at a time; it is owned exclusively by the session Store.
type Identity struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

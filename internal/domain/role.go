package domain

// Role is the closed set of access tiers. Each role carries a fixed numeric
// level; the ordering User < Developer < Admin gates privileged operations.
type Role string

const (
	RoleUser      Role = "User"
	RoleDeveloper Role = "Developer"
	RoleAdmin     Role = "Admin"
)

// Access levels associated with each role.
const (
	LevelUser      = 0
	LevelDeveloper = 1
	LevelAdmin     = 2
)

// Level returns the numeric access level for the role. ok is false for a
// role value outside the closed set.
func (r Role) Level() (level int, ok bool) {
	switch r {
	case RoleUser:
		return LevelUser, true
	case RoleDeveloper:
		return LevelDeveloper, true
	case RoleAdmin:
		return LevelAdmin, true
	default:
		return 0, false
	}
}

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	_, ok := r.Level()
	return ok
}

// RoleRecord is the persisted roles row managed through the admin API.
type RoleRecord struct {
	ID       int
	Level    int
	Position Role
}

// RolePatch names exactly the fields present in an update request.
// Nil means unchanged.
type RolePatch struct {
	ID       int
	Level    *int
	Position *Role
}

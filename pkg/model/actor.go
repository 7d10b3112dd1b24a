package model

const (
	RoleUser    = "user"
	RoleArtisan = "artisan"
	RoleAdmin   = "admin"
)

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may modify a resource owned by ownerID.
func (a Actor) CanManage(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

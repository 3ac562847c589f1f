package model

// Role tags a user with its capability set.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleParticipant Role = "participant"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleOrganizer || r == RoleParticipant
}

// CanManage reports whether a requester may mutate a resource owned by
// ownerID. Admins bypass ownership; everyone else must own the resource.
func CanManage(requester Identity, ownerID string) bool {
	if requester.Role == RoleAdmin {
		return true
	}
	return requester.UserID == ownerID
}

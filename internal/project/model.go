package project

// Project represents a status page project. GroupID is an optional link to a
// group for shared visibility; access decisions currently consider ownership
// only.
type Project struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	OwnerID  int64  `json:"owner_id"`
	GroupID  *int64 `json:"group_id,omitempty"`
	IsPublic bool   `json:"is_public"`
}

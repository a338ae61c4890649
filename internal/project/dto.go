package project

// CreateProjectRequest represents the request to create a new project
type CreateProjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
	// Private by default
	IsPublic bool `json:"is_public"`
}

// UpdateProjectRequest represents a partial update to a project. Only fields
// present in the request body are modified.
type UpdateProjectRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	IsPublic *bool   `json:"is_public,omitempty"`
	GroupID  *int64  `json:"group_id,omitempty"`
}

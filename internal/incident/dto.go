package incident

import "time"

// CreateIncidentRequest represents the request to create a new incident
type CreateIncidentRequest struct {
	ProjectID      int64      `json:"project_id" validate:"required"`
	Title          string     `json:"title" validate:"required,min=1,max=200"`
	Description    string     `json:"description" validate:"required,min=1,max=5000"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
}

package incident

import "time"

// Incident represents an incident on a project's status page
type Incident struct {
	ID             int64      `json:"id"`
	ProjectID      int64      `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	Resolved       bool       `json:"resolved"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

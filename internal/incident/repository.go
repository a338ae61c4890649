package incident

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository handles incident data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new incident repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new incident
func (r *Repository) Create(ctx context.Context, req *CreateIncidentRequest) (*Incident, error) {
	query := `
		INSERT INTO incidents (project_id, title, description, scheduled_start)
		VALUES ($1, $2, $3, $4)
		RETURNING id, project_id, title, description, scheduled_start, resolved, resolved_at, created_at
	`

	incident := &Incident{}
	err := r.db.QueryRowContext(ctx, query, req.ProjectID, req.Title, req.Description, req.ScheduledStart).Scan(
		&incident.ID,
		&incident.ProjectID,
		&incident.Title,
		&incident.Description,
		&incident.ScheduledStart,
		&incident.Resolved,
		&incident.ResolvedAt,
		&incident.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}

	return incident, nil
}

// GetByID retrieves an incident by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Incident, error) {
	query := `
		SELECT id, project_id, title, description, scheduled_start, resolved, resolved_at, created_at
		FROM incidents
		WHERE id = $1
	`

	incident := &Incident{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&incident.ID,
		&incident.ProjectID,
		&incident.Title,
		&incident.Description,
		&incident.ScheduledStart,
		&incident.Resolved,
		&incident.ResolvedAt,
		&incident.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	return incident, nil
}

// ListByProject retrieves all incidents for a project, newest first
func (r *Repository) ListByProject(ctx context.Context, projectID int64) ([]*Incident, error) {
	query := `
		SELECT id, project_id, title, description, scheduled_start, resolved, resolved_at, created_at
		FROM incidents
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*Incident
	for rows.Next() {
		incident := &Incident{}
		if err := rows.Scan(
			&incident.ID,
			&incident.ProjectID,
			&incident.Title,
			&incident.Description,
			&incident.ScheduledStart,
			&incident.Resolved,
			&incident.ResolvedAt,
			&incident.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	return incidents, rows.Err()
}

// MarkResolved stamps an incident resolved
func (r *Repository) MarkResolved(ctx context.Context, id int64, resolvedAt time.Time) (*Incident, error) {
	query := `
		UPDATE incidents
		SET resolved = TRUE, resolved_at = $2
		WHERE id = $1
		RETURNING id, project_id, title, description, scheduled_start, resolved, resolved_at, created_at
	`

	incident := &Incident{}
	err := r.db.QueryRowContext(ctx, query, id, resolvedAt).Scan(
		&incident.ID,
		&incident.ProjectID,
		&incident.Title,
		&incident.Description,
		&incident.ScheduledStart,
		&incident.Resolved,
		&incident.ResolvedAt,
		&incident.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve incident: %w", err)
	}

	return incident, nil
}

// IncidentProject resolves the project an incident belongs to for the
// authorization gate
func (r *Repository) IncidentProject(ctx context.Context, incidentID int64) (int64, bool, error) {
	query := `SELECT project_id FROM incidents WHERE id = $1`

	var projectID int64
	err := r.db.QueryRowContext(ctx, query, incidentID).Scan(&projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get incident project: %w", err)
	}

	return projectID, true, nil
}

package project

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles project data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new project repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new project
func (r *Repository) Create(ctx context.Context, name string, ownerID int64, isPublic bool) (*Project, error) {
	query := `
		INSERT INTO projects (name, owner_id, is_public)
		VALUES ($1, $2, $3)
		RETURNING id, name, owner_id, group_id, is_public
	`

	project := &Project{}
	err := r.db.QueryRowContext(ctx, query, name, ownerID, isPublic).Scan(
		&project.ID,
		&project.Name,
		&project.OwnerID,
		&project.GroupID,
		&project.IsPublic,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetByID retrieves a project by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	query := `
		SELECT id, name, owner_id, group_id, is_public
		FROM projects
		WHERE id = $1
	`

	project := &Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.OwnerID,
		&project.GroupID,
		&project.IsPublic,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListByOwner retrieves all projects owned by a user
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*Project, error) {
	query := `
		SELECT id, name, owner_id, group_id, is_public
		FROM projects
		WHERE owner_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project := &Project{}
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.OwnerID,
			&project.GroupID,
			&project.IsPublic,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Update persists name, public flag and group link
func (r *Repository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET name = $2, is_public = $3, group_id = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, project.ID, project.Name, project.IsPublic, project.GroupID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}

// ProjectIsPublic resolves a project's public flag for anonymous status pages
func (r *Repository) ProjectIsPublic(ctx context.Context, projectID int64) (bool, bool, error) {
	query := `SELECT is_public FROM projects WHERE id = $1`

	var isPublic bool
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(&isPublic)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to get project visibility: %w", err)
	}

	return isPublic, true, nil
}

// ProjectOwner resolves a project's owner for the authorization gate
func (r *Repository) ProjectOwner(ctx context.Context, projectID int64) (int64, bool, error) {
	query := `SELECT owner_id FROM projects WHERE id = $1`

	var ownerID int64
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get project owner: %w", err)
	}

	return ownerID, true, nil
}

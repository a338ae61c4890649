// Package authz decides whether a principal may act on a project or
// incident. Access is ownership-based: the project owner, and nobody else,
// may read or mutate the project and its incidents.
package authz

import (
	"context"

	"github.com/fkhayef/statuswise/pkg/apperr"
)

// Action is accepted on every check for forward compatibility. Read and
// write currently require identical ownership and no check branches on it.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Decision is the three-way outcome of an access check. Distinguishing
// DecisionNotFound from DecisionDenied in one lookup keeps the 404-vs-403
// split consistent without a second existence query at every call site: a
// project that exists but belongs to someone else yields 403, a truly absent
// one yields 404.
type Decision int

const (
	DecisionAllowed Decision = iota
	DecisionNotFound
	DecisionDenied
)

// ProjectStore resolves a project's owner. Implemented by the project
// repository.
type ProjectStore interface {
	// ProjectOwner returns the owner of the project, or found=false when the
	// project does not exist.
	ProjectOwner(ctx context.Context, projectID int64) (ownerID int64, found bool, err error)
}

// IncidentStore resolves the project an incident belongs to. Implemented by
// the incident repository.
type IncidentStore interface {
	// IncidentProject returns the project ID of the incident, or found=false
	// when the incident does not exist.
	IncidentProject(ctx context.Context, incidentID int64) (projectID int64, found bool, err error)
}

// Service is the resource authorization gate. It only reads state and never
// mutates anything.
type Service struct {
	projects  ProjectStore
	incidents IncidentStore
}

// NewService creates a new authorization gate
func NewService(projects ProjectStore, incidents IncidentStore) *Service {
	return &Service{projects: projects, incidents: incidents}
}

// DecideProject evaluates access to a project
func (s *Service) DecideProject(ctx context.Context, userID, projectID int64, action Action) (Decision, error) {
	ownerID, found, err := s.projects.ProjectOwner(ctx, projectID)
	if err != nil {
		return DecisionDenied, err
	}
	if !found {
		return DecisionNotFound, nil
	}
	if ownerID != userID {
		return DecisionDenied, nil
	}
	return DecisionAllowed, nil
}

// DecideIncident evaluates access to an incident by resolving its project
// and applying the project ownership check
func (s *Service) DecideIncident(ctx context.Context, userID, incidentID int64, action Action) (Decision, error) {
	projectID, found, err := s.incidents.IncidentProject(ctx, incidentID)
	if err != nil {
		return DecisionDenied, err
	}
	if !found {
		return DecisionNotFound, nil
	}

	decision, err := s.DecideProject(ctx, userID, projectID, action)
	if err != nil {
		return DecisionDenied, err
	}
	// A dangling project reference means the incident is effectively
	// inaccessible, not that it does not exist
	if decision == DecisionNotFound {
		return DecisionDenied, nil
	}
	return decision, nil
}

// CanAccessProject reports whether the user may perform the action on the
// project. Absent projects and foreign projects both report false.
func (s *Service) CanAccessProject(ctx context.Context, userID, projectID int64, action Action) (bool, error) {
	decision, err := s.DecideProject(ctx, userID, projectID, action)
	if err != nil {
		return false, err
	}
	return decision == DecisionAllowed, nil
}

// CanAccessIncident reports whether the user may perform the action on the
// incident
func (s *Service) CanAccessIncident(ctx context.Context, userID, incidentID int64, action Action) (bool, error) {
	decision, err := s.DecideIncident(ctx, userID, incidentID, action)
	if err != nil {
		return false, err
	}
	return decision == DecisionAllowed, nil
}

// RequireProjectAccess returns nil when access is allowed, NotFound when the
// project does not exist, and PermissionDenied when it exists but belongs to
// someone else
func (s *Service) RequireProjectAccess(ctx context.Context, userID, projectID int64, action Action) error {
	decision, err := s.DecideProject(ctx, userID, projectID, action)
	if err != nil {
		return err
	}
	switch decision {
	case DecisionNotFound:
		return apperr.NotFound("Project not found")
	case DecisionDenied:
		return apperr.PermissionDenied("Access denied to this project")
	}
	return nil
}

// RequireIncidentAccess returns nil when access is allowed, NotFound when the
// incident does not exist, and PermissionDenied otherwise
func (s *Service) RequireIncidentAccess(ctx context.Context, userID, incidentID int64, action Action) error {
	decision, err := s.DecideIncident(ctx, userID, incidentID, action)
	if err != nil {
		return err
	}
	switch decision {
	case DecisionNotFound:
		return apperr.NotFound("Incident not found")
	case DecisionDenied:
		return apperr.PermissionDenied("Access denied to this incident")
	}
	return nil
}

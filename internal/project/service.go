package project

import (
	"context"
	"strings"

	"github.com/fkhayef/statuswise/internal/authz"
	"github.com/fkhayef/statuswise/pkg/apperr"
)

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, name string, ownerID int64, isPublic bool) (*Project, error)
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
}

// Gate decides whether the actor may touch a project
type Gate interface {
	RequireProjectAccess(ctx context.Context, userID, projectID int64, action authz.Action) error
}

// Service handles project business logic
type Service struct {
	store Store
	gate  Gate
}

// NewService creates a new project service
func NewService(store Store, gate Gate) *Service {
	return &Service{store: store, gate: gate}
}

// Create creates a new project owned by the actor
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateProjectRequest) (*Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArgument("Project name must not be blank")
	}

	return s.store.Create(ctx, name, actorID, req.IsPublic)
}

// List retrieves the actor's own projects
func (s *Service) List(ctx context.Context, actorID int64) ([]*Project, error) {
	return s.store.ListByOwner(ctx, actorID)
}

// Get retrieves a project the actor may read
func (s *Service) Get(ctx context.Context, actorID, projectID int64) (*Project, error) {
	if err := s.gate.RequireProjectAccess(ctx, actorID, projectID, authz.ActionRead); err != nil {
		return nil, err
	}

	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found")
	}

	return project, nil
}

// Update modifies a project the actor may write. Only fields present in the
// request are changed.
func (s *Service) Update(ctx context.Context, actorID, projectID int64, req *UpdateProjectRequest) (*Project, error) {
	if err := s.gate.RequireProjectAccess(ctx, actorID, projectID, authz.ActionWrite); err != nil {
		return nil, err
	}

	project, err := s.store.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.InvalidArgument("Project name must not be blank")
		}
		project.Name = name
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	if req.GroupID != nil {
		project.GroupID = req.GroupID
	}

	if err := s.store.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

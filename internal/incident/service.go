package incident

import (
	"context"
	"strings"
	"time"

	"github.com/fkhayef/statuswise/internal/authz"
	"github.com/fkhayef/statuswise/pkg/apperr"
)

// Store is the persistence contract the service depends on
type Store interface {
	Create(ctx context.Context, req *CreateIncidentRequest) (*Incident, error)
	GetByID(ctx context.Context, id int64) (*Incident, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Incident, error)
	MarkResolved(ctx context.Context, id int64, resolvedAt time.Time) (*Incident, error)
}

// ProjectStore is the minimal project view needed for the public listing
type ProjectStore interface {
	// ProjectIsPublic returns the project's public flag, or found=false when
	// the project does not exist
	ProjectIsPublic(ctx context.Context, projectID int64) (isPublic bool, found bool, err error)
}

// Gate decides whether the actor may touch a project or incident
type Gate interface {
	RequireProjectAccess(ctx context.Context, userID, projectID int64, action authz.Action) error
	RequireIncidentAccess(ctx context.Context, userID, incidentID int64, action authz.Action) error
}

// Service handles incident business logic
type Service struct {
	store    Store
	projects ProjectStore
	gate     Gate

	now func() time.Time
}

// NewService creates a new incident service
func NewService(store Store, projects ProjectStore, gate Gate) *Service {
	return &Service{
		store:    store,
		projects: projects,
		gate:     gate,
		now:      time.Now,
	}
}

// Create creates an incident on a project the actor may write
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateIncidentRequest) (*Incident, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return nil, apperr.InvalidArgument("Incident title must not be blank")
	}
	if req.Description == "" {
		return nil, apperr.InvalidArgument("Incident description must not be blank")
	}

	if err := s.gate.RequireProjectAccess(ctx, actorID, req.ProjectID, authz.ActionWrite); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, req)
}

// List retrieves the incidents of a project the actor may read
func (s *Service) List(ctx context.Context, actorID, projectID int64) ([]*Incident, error) {
	if err := s.gate.RequireProjectAccess(ctx, actorID, projectID, authz.ActionRead); err != nil {
		return nil, err
	}

	return s.store.ListByProject(ctx, projectID)
}

// Resolve marks an incident resolved
func (s *Service) Resolve(ctx context.Context, actorID, incidentID int64) (*Incident, error) {
	if err := s.gate.RequireIncidentAccess(ctx, actorID, incidentID, authz.ActionWrite); err != nil {
		return nil, err
	}

	incident, err := s.store.MarkResolved(ctx, incidentID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, apperr.NotFound("Incident not found")
	}

	return incident, nil
}

// PublicList retrieves the incidents of a public project without a principal
func (s *Service) PublicList(ctx context.Context, projectID int64) ([]*Incident, error) {
	isPublic, found, err := s.projects.ProjectIsPublic(ctx, projectID)
	if err != nil {
		return nil, err
	}
	// Private projects look absent to anonymous callers
	if !found || !isPublic {
		return nil, apperr.NotFound("Project not found")
	}

	return s.store.ListByProject(ctx, projectID)
}

package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/statuswise/internal/authz"
	"github.com/fkhayef/statuswise/pkg/apperr"
)

// memStore backs both the service and the authorization gate, the same
// double duty the repository does in production
type memStore struct {
	projects map[int64]*Project
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{projects: make(map[int64]*Project)}
}

func (m *memStore) Create(ctx context.Context, name string, ownerID int64, isPublic bool) (*Project, error) {
	m.nextID++
	p := &Project{ID: m.nextID, Name: name, OwnerID: ownerID, IsPublic: isPublic}
	m.projects[p.ID] = p
	copied := *p
	return &copied, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID int64) ([]*Project, error) {
	var projects []*Project
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			copied := *p
			projects = append(projects, &copied)
		}
	}
	return projects, nil
}

func (m *memStore) Update(ctx context.Context, project *Project) error {
	copied := *project
	m.projects[project.ID] = &copied
	return nil
}

func (m *memStore) ProjectOwner(ctx context.Context, projectID int64) (int64, bool, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return 0, false, nil
	}
	return p.OwnerID, true, nil
}

type noIncidents struct{}

func (noIncidents) IncidentProject(ctx context.Context, incidentID int64) (int64, bool, error) {
	return 0, false, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	gate := authz.NewService(store, noIncidents{})
	return NewService(store, gate), store
}

func TestCreateProject(t *testing.T) {
	svc, _ := newTestService()

	p, err := svc.Create(context.Background(), 1, &CreateProjectRequest{Name: "  API  ", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "API", p.Name)
	assert.Equal(t, int64(1), p.OwnerID)
	assert.True(t, p.IsPublic)

	_, err = svc.Create(context.Background(), 1, &CreateProjectRequest{Name: "   "})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestGetProjectOwnership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, &CreateProjectRequest{Name: "API"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// A foreign project yields 403-shaped denial, an absent one 404
	_, err = svc.Get(ctx, 2, p.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))

	_, err = svc.Get(ctx, 1, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateProject(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, &CreateProjectRequest{Name: "API"})
	require.NoError(t, err)

	groupID := int64(7)
	updated, err := svc.Update(ctx, 1, p.ID, &UpdateProjectRequest{
		Name:     strPtr("Status API"),
		IsPublic: boolPtr(true),
		GroupID:  &groupID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Status API", updated.Name)
	assert.True(t, updated.IsPublic)
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, groupID, *updated.GroupID)

	// Omitted fields stay untouched
	updated, err = svc.Update(ctx, 1, p.ID, &UpdateProjectRequest{IsPublic: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Status API", updated.Name)
	assert.False(t, updated.IsPublic)

	_, err = svc.Update(ctx, 2, p.ID, &UpdateProjectRequest{Name: strPtr("stolen")})
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
	assert.Equal(t, "Status API", store.projects[p.ID].Name)
}

func TestListProjects(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateProjectRequest{Name: "API"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 2, &CreateProjectRequest{Name: "Web"})
	require.NoError(t, err)

	projects, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "API", projects[0].Name)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

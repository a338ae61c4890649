package incident

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/statuswise/internal/authz"
	"github.com/fkhayef/statuswise/pkg/apperr"
)

type fakeProject struct {
	ownerID  int64
	isPublic bool
}

// memStore holds incidents and the projects they hang off, backing the
// service, the gate and the public listing in one place
type memStore struct {
	incidents map[int64]*Incident
	projects  map[int64]*fakeProject
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		incidents: make(map[int64]*Incident),
		projects:  make(map[int64]*fakeProject),
	}
}

func (m *memStore) Create(ctx context.Context, req *CreateIncidentRequest) (*Incident, error) {
	m.nextID++
	inc := &Incident{
		ID:             m.nextID,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		ScheduledStart: req.ScheduledStart,
	}
	m.incidents[inc.ID] = inc
	copied := *inc
	return &copied, nil
}

func (m *memStore) GetByID(ctx context.Context, id int64) (*Incident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return nil, nil
	}
	copied := *inc
	return &copied, nil
}

func (m *memStore) ListByProject(ctx context.Context, projectID int64) ([]*Incident, error) {
	var incidents []*Incident
	for _, inc := range m.incidents {
		if inc.ProjectID == projectID {
			copied := *inc
			incidents = append(incidents, &copied)
		}
	}
	return incidents, nil
}

func (m *memStore) MarkResolved(ctx context.Context, id int64, resolvedAt time.Time) (*Incident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return nil, nil
	}
	inc.Resolved = true
	inc.ResolvedAt = &resolvedAt
	copied := *inc
	return &copied, nil
}

func (m *memStore) IncidentProject(ctx context.Context, incidentID int64) (int64, bool, error) {
	inc, ok := m.incidents[incidentID]
	if !ok {
		return 0, false, nil
	}
	return inc.ProjectID, true, nil
}

func (m *memStore) ProjectOwner(ctx context.Context, projectID int64) (int64, bool, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return 0, false, nil
	}
	return p.ownerID, true, nil
}

func (m *memStore) ProjectIsPublic(ctx context.Context, projectID int64) (bool, bool, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return false, false, nil
	}
	return p.isPublic, true, nil
}

func newTestService() (*Service, *memStore, *time.Time) {
	store := newMemStore()
	// User 1 owns project 10 (public) and project 11 (private)
	store.projects[10] = &fakeProject{ownerID: 1, isPublic: true}
	store.projects[11] = &fakeProject{ownerID: 1, isPublic: false}

	gate := authz.NewService(store, store)
	svc := NewService(store, store, gate)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, store, &fixed
}

func TestCreateIncident(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	inc, err := svc.Create(ctx, 1, &CreateIncidentRequest{
		ProjectID:   10,
		Title:       "  Degraded API  ",
		Description: "Elevated error rates",
	})
	require.NoError(t, err)
	assert.Equal(t, "Degraded API", inc.Title)
	assert.False(t, inc.Resolved)

	// Only the project owner may report incidents
	_, err = svc.Create(ctx, 2, &CreateIncidentRequest{
		ProjectID:   10,
		Title:       "Hijack",
		Description: "nope",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))
}

func TestCreateIncidentValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 10, Title: " ", Description: "d"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	_, err = svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 10, Title: "t", Description: " "})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
}

func TestListIncidents(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 10, Title: "t", Description: "d"})
	require.NoError(t, err)

	incidents, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, incidents, 1)

	_, err = svc.List(ctx, 2, 10)
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))

	_, err = svc.List(ctx, 1, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestResolveIncident(t *testing.T) {
	svc, _, fixed := newTestService()
	ctx := context.Background()

	inc, err := svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 10, Title: "t", Description: "d"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, 1, inc.ID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, *fixed, *resolved.ResolvedAt)

	_, err = svc.Resolve(ctx, 2, inc.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindPermissionDenied))

	_, err = svc.Resolve(ctx, 1, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPublicList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 10, Title: "t", Description: "d"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, &CreateIncidentRequest{ProjectID: 11, Title: "t2", Description: "d2"})
	require.NoError(t, err)

	incidents, err := svc.PublicList(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, incidents, 1)

	// Private and absent projects are indistinguishable to anonymous callers
	_, err = svc.PublicList(ctx, 11)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.PublicList(ctx, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

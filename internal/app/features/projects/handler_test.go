package projects_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/features/projects"
	"github.com/dalemusser/projectflow/internal/app/service"
	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/store/memstore"
	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"github.com/dalemusser/projectflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, st store.Store) (*projects.Handler, *testutil.Fixtures) {
	t.Helper()
	svc := service.New(st, nil, nil, service.Options{}, zap.NewNop())
	return projects.NewHandler(svc, zap.NewNop()), testutil.NewFixtures(t, st)
}

func TestCreate_DefaultsToActive(t *testing.T) {
	h, fx := newTestHandler(t, memstore.New())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Ada", "ada@example.com", "pw123")

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/projects", map[string]any{"name": "Launch"}, testutil.AsTestUser(owner))
	rec := testutil.NewRecorder()
	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var p models.Project
	rec.DecodeJSON(t, &p)
	assert.Equal(t, "Launch", p.Name)
	assert.Equal(t, models.ProjectActive, p.Status)
	assert.Equal(t, owner.ID, p.CreatedBy)
	assert.False(t, p.ID.IsZero())
}

func TestCreate_BlankNameIsRejected(t *testing.T) {
	h, _ := newTestHandler(t, memstore.New())

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/api/projects", map[string]any{"name": "   "}, testutil.MemberUser())
	rec := testutil.NewRecorder()
	h.Create(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "name is required")
}

func TestUpdate_ImmutableFieldIsRejected(t *testing.T) {
	h, fx := newTestHandler(t, memstore.New())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Ada", "ada@example.com", "pw123")
	p := fx.CreateProject(ctx, "Launch", owner.ID)

	body := map[string]any{"name": "Relaunch", "createdBy": primitive.NewObjectID().Hex()}
	req := testutil.NewAuthenticatedRequest(http.MethodPut, "/api/projects/"+p.ID.Hex(), body, testutil.AsTestUser(owner))
	req = testutil.WithChiURLParam(req, "id", p.ID.Hex())
	rec := testutil.NewRecorder()
	h.Update(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, `field "createdBy" cannot be updated`)

	stored, err := fx.Store().Projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Launch", stored.Name)
}

func TestUpdate_UnknownIDIs404(t *testing.T) {
	h, _ := newTestHandler(t, memstore.New())
	id := primitive.NewObjectID().Hex()

	req := testutil.NewAuthenticatedRequest(http.MethodPut, "/api/projects/"+id, map[string]any{"progress": 10}, testutil.MemberUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := testutil.NewRecorder()
	h.Update(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, "project not found")
}

type deadlineTasks struct {
	store.Tasks
	remaining time.Duration
}

func (d *deadlineTasks) DeleteByProject(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if dl, ok := ctx.Deadline(); ok {
		d.remaining = time.Until(dl)
	}
	return d.Tasks.DeleteByProject(ctx, id)
}

func TestDelete_CascadeGetsTheLongTimeout(t *testing.T) {
	timeouts.Configure(timeouts.Config{Short: time.Second, Medium: 2 * time.Second, Long: time.Hour})
	t.Cleanup(timeouts.Reset)

	st := memstore.New()
	tasks := &deadlineTasks{Tasks: st.Tasks}
	st.Tasks = tasks
	h, fx := newTestHandler(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Ada", "ada@example.com", "pw123")
	p := fx.CreateProject(ctx, "Launch", owner.ID)
	fx.CreateTask(ctx, "Write copy", p.ID, nil)

	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/api/projects/"+p.ID.Hex()), testutil.AsTestUser(owner)), "id", p.ID.Hex())
	rec := testutil.NewRecorder()
	h.Delete(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, "project deleted")
	assert.True(t, tasks.remaining > 2*time.Second, "cascade deadline %s", tasks.remaining)

	left, err := st.Tasks.List(ctx, store.TaskFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, _ := newTestHandler(t, memstore.New())
	router := auth.RequireSignedIn(projects.Routes(h))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertMessage(t, "unauthorized")

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusOK)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

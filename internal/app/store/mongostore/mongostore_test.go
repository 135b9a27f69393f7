package mongostore_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/store/mongostore"
	"github.com/dalemusser/projectflow/internal/app/system/indexes"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"github.com/dalemusser/projectflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) store.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, indexes.EnsureAll(ctx, db, zap.NewNop()))
	return mongostore.New(db)
}

func TestUsers_EmailIsNormalizedAndUnique(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := st.Users.Create(ctx, models.User{Name: "  Ada  ", Email: " Ada@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada", u.Name)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = st.Users.Create(ctx, models.User{Name: "Other", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := st.Users.GetByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = st.Users.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_ListAndGetMany(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	empty, err := st.Users.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	b, _ := st.Users.Create(ctx, models.User{Name: "Bea", Email: "b@x.io"})
	a, _ := st.Users.Create(ctx, models.User{Name: "Al", Email: "a@x.io"})

	all, err := st.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Al", all[0].Name)

	some, err := st.Users.GetMany(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID(), a.ID})
	require.NoError(t, err)
	assert.Len(t, some, 2)

	none, err := st.Users.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProjects_UpdateAndDelete(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := st.Projects.Create(ctx, models.Project{Name: "Apollo", Description: "moon", Status: models.ProjectActive, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.NotNil(t, p.Members)

	progress := 60
	got, err := st.Projects.Update(ctx, p.ID, models.ProjectPatch{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 60, got.Progress)
	assert.Equal(t, "moon", got.Description)

	_, err = st.Projects.Update(ctx, primitive.NewObjectID(), models.ProjectPatch{Progress: &progress})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Projects.Delete(ctx, p.ID))
	assert.ErrorIs(t, st.Projects.Delete(ctx, p.ID), store.ErrNotFound)
}

func TestTasks_FilterPatchAndCascade(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()
	who := primitive.NewObjectID()
	base := time.Now().UTC()

	first, err := st.Tasks.Create(ctx, models.Task{Title: "one", ProjectID: p1, AssigneeID: &who, CreatedAt: base})
	require.NoError(t, err)
	_, err = st.Tasks.Create(ctx, models.Task{Title: "two", ProjectID: p1, CreatedAt: base.Add(time.Second)})
	require.NoError(t, err)
	_, err = st.Tasks.Create(ctx, models.Task{Title: "other", ProjectID: p2, CreatedAt: base})
	require.NoError(t, err)

	inP1, err := st.Tasks.List(ctx, store.TaskFilter{ProjectID: &p1})
	require.NoError(t, err)
	require.Len(t, inP1, 2)
	assert.Equal(t, "one", inP1[0].Title)

	cleared, err := st.Tasks.Update(ctx, first.ID, models.TaskPatch{ClearAssignee: true})
	require.NoError(t, err)
	assert.False(t, cleared.HasAssignee())
	assert.Equal(t, "one", cleared.Title)

	n, err := st.Tasks.DeleteByProject(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := st.Tasks.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "other", rest[0].Title)

	assert.ErrorIs(t, st.Tasks.Delete(ctx, first.ID), store.ErrNotFound)
}

func TestCommentsAndNotifications_Ordering(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task, user := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	_, _ = st.Comments.Create(ctx, models.Comment{Content: "first", TaskID: task, CreatedAt: base})
	_, _ = st.Comments.Create(ctx, models.Comment{Content: "second", TaskID: task, CreatedAt: base.Add(time.Second)})

	cs, err := st.Comments.ListByTask(ctx, task)
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, "first", cs[0].Content)

	older, _ := st.Notifications.Create(ctx, models.Notification{Title: "older", UserID: user, CreatedAt: base})
	_, _ = st.Notifications.Create(ctx, models.Notification{Title: "newer", UserID: user, CreatedAt: base.Add(time.Minute)})

	ns, err := st.Notifications.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "newer", ns[0].Title)

	for i := 0; i < 2; i++ {
		n, err := st.Notifications.MarkRead(ctx, older.ID)
		require.NoError(t, err)
		assert.True(t, n.Read)
	}
	_, err = st.Notifications.MarkRead(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, st.Pinger.Ping(ctx))
	assert.Equal(t, "mongo", st.Backend)
}

func TestTasks_EmptyTagsReadBackAsEmptyList(t *testing.T) {
	st := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := st.Tasks.Create(ctx, models.Task{Title: "bare", ProjectID: primitive.NewObjectID()})
	require.NoError(t, err)

	got, err := st.Tasks.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tags":[]`)
}

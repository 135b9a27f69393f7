package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/store/memstore"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUsers_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	_, err := st.Users.Create(ctx, models.User{Name: "Ada", Email: "Ada@Example.com"})
	require.NoError(t, err)

	_, err = st.Users.Create(ctx, models.User{Name: "Other", Email: "  ada@example.COM "})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	u, err := st.Users.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestUsers_GetManySkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	b, _ := st.Users.Create(ctx, models.User{Name: "Bea", Email: "b@x.io"})
	a, _ := st.Users.Create(ctx, models.User{Name: "Al", Email: "a@x.io"})

	got, err := st.Users.GetMany(ctx, []primitive.ObjectID{b.ID, primitive.NewObjectID(), a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Al", got[0].Name)
	assert.Equal(t, "Bea", got[1].Name)
}

func TestProjects_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	member := primitive.NewObjectID()

	p, err := st.Projects.Create(ctx, models.Project{Name: "Apollo", Members: []primitive.ObjectID{member}})
	require.NoError(t, err)

	p.Members[0] = primitive.NewObjectID()

	again, err := st.Projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, member, again.Members[0])
}

func TestProjects_UpdatePreservesUnspecifiedFields(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	p, _ := st.Projects.Create(ctx, models.Project{Name: "Apollo", Description: "moon", Status: models.ProjectActive})
	progress := 40

	got, err := st.Projects.Update(ctx, p.ID, models.ProjectPatch{Progress: &progress})
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "moon", got.Description)
	assert.Equal(t, "Apollo", got.Name)
	assert.False(t, got.UpdatedAt.Before(p.CreatedAt))

	_, err = st.Projects.Update(ctx, primitive.NewObjectID(), models.ProjectPatch{Progress: &progress})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTasks_ListFilterAndDeleteByProject(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := st.Tasks.Create(ctx, models.Task{Title: "a", ProjectID: p1})
		require.NoError(t, err)
	}
	_, err := st.Tasks.Create(ctx, models.Task{Title: "b", ProjectID: p2})
	require.NoError(t, err)

	only, err := st.Tasks.List(ctx, store.TaskFilter{ProjectID: &p2})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "b", only[0].Title)

	n, err := st.Tasks.DeleteByProject(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	all, err := st.Tasks.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTasks_ClearAssignee(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	who := primitive.NewObjectID()

	task, _ := st.Tasks.Create(ctx, models.Task{Title: "t", ProjectID: primitive.NewObjectID(), AssigneeID: &who})
	require.True(t, task.HasAssignee())

	got, err := st.Tasks.Update(ctx, task.ID, models.TaskPatch{ClearAssignee: true})
	require.NoError(t, err)
	assert.False(t, got.HasAssignee())

	assert.ErrorIs(t, st.Tasks.Delete(ctx, primitive.NewObjectID()), store.ErrNotFound)
}

func TestComments_OldestFirst(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	task := primitive.NewObjectID()

	_, _ = st.Comments.Create(ctx, models.Comment{Content: "first", TaskID: task})
	_, _ = st.Comments.Create(ctx, models.Comment{Content: "elsewhere", TaskID: primitive.NewObjectID()})
	_, _ = st.Comments.Create(ctx, models.Comment{Content: "second", TaskID: task})

	got, err := st.Comments.ListByTask(ctx, task)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func TestNotifications_NewestFirstAndMarkReadIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	user := primitive.NewObjectID()
	at := time.Now().UTC()

	older, _ := st.Notifications.Create(ctx, models.Notification{Title: "older", UserID: user, CreatedAt: at.Add(-time.Minute)})
	_, _ = st.Notifications.Create(ctx, models.Notification{Title: "same-a", UserID: user, CreatedAt: at})
	_, _ = st.Notifications.Create(ctx, models.Notification{Title: "same-b", UserID: user, CreatedAt: at})
	_, _ = st.Notifications.Create(ctx, models.Notification{Title: "not mine", UserID: primitive.NewObjectID()})

	got, err := st.Notifications.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"same-b", "same-a", "older"}, []string{got[0].Title, got[1].Title, got[2].Title})

	for i := 0; i < 2; i++ {
		n, err := st.Notifications.MarkRead(ctx, older.ID)
		require.NoError(t, err)
		assert.True(t, n.Read)
	}

	_, err = st.Notifications.MarkRead(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTransactionsUnsupported(t *testing.T) {
	st := memstore.New()
	called := false
	err := st.Tx.WithTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, store.ErrTxnUnsupported))
	assert.False(t, called)
	assert.NoError(t, st.Pinger.Ping(context.Background()))
	assert.Equal(t, "memory", st.Backend)
}

func TestTasks_TagsNeverNil(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	task, err := st.Tasks.Create(ctx, models.Task{Title: "bare", ProjectID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.NotNil(t, task.Tags)

	empty := []string{}
	got, err := st.Tasks.Update(ctx, task.ID, models.TaskPatch{Tags: &empty})
	require.NoError(t, err)
	assert.NotNil(t, got.Tags)
	assert.Empty(t, got.Tags)
}

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures writes test data straight through a store, skipping the service
// layer and its events.
type Fixtures struct {
	st store.Store
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, st store.Store) *Fixtures {
	t.Helper()
	return &Fixtures{st: st, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() store.Store {
	return f.st
}

// CreateUser stores a member whose password is password.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	u, err := f.st.Users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleMember,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProject stores an active project owned by createdBy.
func (f *Fixtures) CreateProject(ctx context.Context, name string, createdBy primitive.ObjectID, members ...primitive.ObjectID) models.Project {
	f.t.Helper()

	if members == nil {
		members = []primitive.ObjectID{}
	}
	p, err := f.st.Projects.Create(ctx, models.Project{
		Name:      name,
		Status:    models.ProjectActive,
		Members:   members,
		CreatedBy: createdBy,
	})
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// CreateTask stores a todo task in project, optionally assigned.
func (f *Fixtures) CreateTask(ctx context.Context, title string, projectID primitive.ObjectID, assignee *primitive.ObjectID) models.Task {
	f.t.Helper()

	t, err := f.st.Tasks.Create(ctx, models.Task{
		Title:      title,
		Status:     models.TaskTodo,
		Priority:   models.PriorityMedium,
		ProjectID:  projectID,
		AssigneeID: assignee,
		Tags:       []string{},
	})
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return t
}

// CreateNotification stores an unread task_assigned notification for userID.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, title string) models.Notification {
	f.t.Helper()

	n, err := f.st.Notifications.Create(ctx, models.Notification{
		Type:      models.NotificationTaskAssigned,
		Title:     title,
		Message:   "You've been assigned to \"" + title + "\"",
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

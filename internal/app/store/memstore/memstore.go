// internal/app/store/memstore/memstore.go

// Package memstore is an in-process implementation of store.Store. Every
// collection is a map keyed by id plus an insertion-order slice, guarded by
// its own RWMutex. Documents are copied on the way in and out so callers never
// share memory with the arena.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/normalize"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns an empty in-memory store.
func New() store.Store {
	return store.Store{
		Backend:       "memory",
		Users:         &users{byID: map[primitive.ObjectID]models.User{}},
		Projects:      &projects{byID: map[primitive.ObjectID]models.Project{}},
		Tasks:         &tasks{byID: map[primitive.ObjectID]models.Task{}},
		Comments:      &comments{},
		Notifications: &notifications{byID: map[primitive.ObjectID]*models.Notification{}},
		Tx:            noTxn{},
		Pinger:        alwaysUp{},
	}
}

type noTxn struct{}

func (noTxn) WithTransaction(context.Context, func(context.Context) error) error {
	return store.ErrTxnUnsupported
}

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error { return nil }

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

/* -------------------------------------------------------------------------- */
/* users                                                                      */
/* -------------------------------------------------------------------------- */

type users struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]models.User
	order []primitive.ObjectID
}

func (s *users) Create(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = normalize.Email(u.Email)
	u.Name = normalize.Name(u.Name)
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return models.User{}, store.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	stamp(&u.CreatedAt)
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	s.byID[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

func (s *users) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = normalize.Email(email)
	for _, id := range s.order {
		if u := s.byID[id]; u.Email == email {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *users) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := s.byID[id]; ok {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *users) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	sortUsers(out)
	return out, nil
}

func sortUsers(us []models.User) {
	sort.SliceStable(us, func(i, j int) bool { return us[i].Name < us[j].Name })
}

/* -------------------------------------------------------------------------- */
/* projects                                                                   */
/* -------------------------------------------------------------------------- */

type projects struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]models.Project
	order []primitive.ObjectID
}

func copyProject(p models.Project) models.Project {
	p.Members = append([]primitive.ObjectID{}, p.Members...)
	return p
}

func (s *projects) Create(ctx context.Context, p models.Project) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	stamp(&p.CreatedAt)
	p = copyProject(p)
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	return copyProject(p), nil
}

func (s *projects) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return models.Project{}, store.ErrNotFound
	}
	return copyProject(p), nil
}

func (s *projects) List(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyProject(s.byID[id]))
	}
	return out, nil
}

func (s *projects) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return models.Project{}, store.ErrNotFound
	}
	p = copyProject(p)
	patch.ApplyTo(&p, time.Now().UTC())
	s.byID[id] = p
	return copyProject(p), nil
}

func (s *projects) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	s.order = without(s.order, id)
	return nil
}

/* -------------------------------------------------------------------------- */
/* tasks                                                                      */
/* -------------------------------------------------------------------------- */

type tasks struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]models.Task
	order []primitive.ObjectID
}

func copyTask(t models.Task) models.Task {
	t.Tags = append([]string{}, t.Tags...)
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	if t.ReporterID != nil {
		id := *t.ReporterID
		t.ReporterID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

func (s *tasks) Create(ctx context.Context, t models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	stamp(&t.CreatedAt)
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	t = copyTask(t)
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	return copyTask(t), nil
}

func (s *tasks) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return models.Task{}, store.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *tasks) List(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Task{}
	for _, id := range s.order {
		t := s.byID[id]
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		out = append(out, copyTask(t))
	}
	return out, nil
}

func (s *tasks) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return models.Task{}, store.ErrNotFound
	}
	t = copyTask(t)
	patch.ApplyTo(&t, time.Now().UTC())
	s.byID[id] = t
	return copyTask(t), nil
}

func (s *tasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	s.order = without(s.order, id)
	return nil
}

func (s *tasks) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	kept := s.order[:0]
	for _, id := range s.order {
		if s.byID[id].ProjectID == projectID {
			delete(s.byID, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return n, nil
}

/* -------------------------------------------------------------------------- */
/* comments                                                                   */
/* -------------------------------------------------------------------------- */

type comments struct {
	mu  sync.RWMutex
	all []models.Comment
}

func (s *comments) Create(ctx context.Context, c models.Comment) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stamp(&c.CreatedAt)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.all = append(s.all, c)
	return c, nil
}

func (s *comments) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Comment{}
	for _, c := range s.all {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

/* -------------------------------------------------------------------------- */
/* notifications                                                              */
/* -------------------------------------------------------------------------- */

type notifications struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]*models.Notification
	order []primitive.ObjectID
}

func copyNotification(n models.Notification) models.Notification {
	if n.Data != nil {
		data := make(map[string]string, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		n.Data = data
	}
	return n
}

func (s *notifications) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	stamp(&n.CreatedAt)
	stored := copyNotification(n)
	s.byID[n.ID] = &stored
	s.order = append(s.order, n.ID)
	return copyNotification(n), nil
}

// ListByUser walks insertion order backwards so equal timestamps still come
// out newest first.
func (s *notifications) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Notification{}
	for i := len(s.order) - 1; i >= 0; i-- {
		n := s.byID[s.order[i]]
		if n.UserID == userID {
			out = append(out, copyNotification(*n))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *notifications) MarkRead(ctx context.Context, id primitive.ObjectID) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return models.Notification{}, store.ErrNotFound
	}
	n.Read = true
	return copyNotification(*n), nil
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

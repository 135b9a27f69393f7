package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/normalize"
	"github.com/dalemusser/projectflow/internal/app/system/notify"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TaskInput is the body of POST /api/tasks.
type TaskInput struct {
	Title        string   `json:"title" validate:"required,max=500"`
	Description  string   `json:"description"`
	Status       string   `json:"status" validate:"omitempty,oneof=todo in-progress review completed"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID   string   `json:"assigneeId"`
	ReporterID   string   `json:"reporterId"`
	ProjectID    string   `json:"projectId" validate:"required"`
	DueDate      string   `json:"dueDate"`
	Tags         []string `json:"tags"`
	TimeEstimate *float64 `json:"timeEstimate"`
	TimeSpent    *float64 `json:"timeSpent"`
}

// CreateTask stores a task and, when it has an assignee, the derived
// task_assigned notification. task-created is published before the
// notification event.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) (models.Task, error) {
	t, err := s.buildTask(ctx, in)
	if err != nil {
		return models.Task{}, observe("create_task", err)
	}

	if s.opts.StrictReferences {
		if _, err := s.store.Projects.GetByID(ctx, t.ProjectID); err != nil {
			return models.Task{}, observe("create_task", storeErr("create task: lookup project", "project", err))
		}
	}

	notes := notify.ForTaskCreated(t, t.CreatedAt)
	created, saved, err := s.writeTaskWithNotifications(ctx, t, notes)
	if err != nil {
		return models.Task{}, observe("create_task", err)
	}

	s.toRoom(realtime.ProjectRoom(created.ProjectID), realtime.EventTaskCreated, created)
	for _, n := range saved {
		s.toRoom(realtime.UserRoom(n.UserID), realtime.EventNotification, n)
	}
	return created, observe("create_task", nil)
}

func (s *Service) buildTask(ctx context.Context, in TaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Status = normalize.Token(in.Status)
	in.Priority = normalize.Token(in.Priority)
	if err := checkStruct(in); err != nil {
		return models.Task{}, err
	}
	projectID, err := parseID("projectId", in.ProjectID)
	if err != nil {
		return models.Task{}, err
	}
	assignee, err := parseOptionalID("assigneeId", in.AssigneeID)
	if err != nil {
		return models.Task{}, err
	}
	var reporter *primitive.ObjectID
	if id, ok, err := callerOr(ctx, "reporterId", in.ReporterID); err != nil {
		return models.Task{}, err
	} else if ok {
		reporter = &id
	}
	due, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	if err := nonNegative("timeEstimate", in.TimeEstimate); err != nil {
		return models.Task{}, err
	}
	if err := nonNegative("timeSpent", in.TimeSpent); err != nil {
		return models.Task{}, err
	}

	now := s.now()
	t := models.Task{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		Priority:     in.Priority,
		AssigneeID:   assignee,
		ReporterID:   reporter,
		ProjectID:    projectID,
		DueDate:      due,
		Tags:         in.Tags,
		TimeEstimate: in.TimeEstimate,
		TimeSpent:    in.TimeSpent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

// writeTaskWithNotifications persists t and notes according to the
// configured policy and returns the notifications that were actually stored.
func (s *Service) writeTaskWithNotifications(ctx context.Context, t models.Task, notes []models.Notification) (models.Task, []models.Notification, error) {
	if s.opts.NotifyWritePolicy == PolicyTxn && len(notes) > 0 && s.store.Tx != nil {
		var (
			created models.Task
			saved   []models.Notification
		)
		err := s.store.Tx.WithTransaction(ctx, func(tx context.Context) error {
			saved = saved[:0]
			var err error
			if created, err = s.store.Tasks.Create(tx, t); err != nil {
				return err
			}
			for _, n := range notes {
				stored, err := s.store.Notifications.Create(tx, n)
				if err != nil {
					return err
				}
				saved = append(saved, stored)
			}
			return nil
		})
		switch {
		case err == nil:
			return created, saved, nil
		case !errors.Is(err, store.ErrTxnUnsupported):
			return models.Task{}, nil, storeErr("create task (txn)", "task", err)
		}
		s.log.Debug("store has no transactions; writing task and notification separately")
	}

	created, err := s.store.Tasks.Create(ctx, t)
	if err != nil {
		return models.Task{}, nil, storeErr("create task", "task", err)
	}
	return created, s.writeNotifications(ctx, notes), nil
}

// writeNotifications is the second half of the saga: each failure is logged
// and counted, never returned.
func (s *Service) writeNotifications(ctx context.Context, notes []models.Notification) []models.Notification {
	var saved []models.Notification
	for _, n := range notes {
		res, err := s.notifyCB.Execute(func() (interface{}, error) {
			return s.store.Notifications.Create(ctx, n)
		})
		if err != nil {
			derivedNotificationFailures.Inc()
			s.log.Warn("derived notification not written; task kept",
				zap.Error(err),
				zap.String("type", n.Type),
				zap.String("user_id", n.UserID.Hex()),
				zap.String("task_id", n.Data["taskId"]))
			continue
		}
		saved = append(saved, res.(models.Notification))
	}
	return saved
}

// ListTasks returns all tasks, or those of one project when projectHex is
// set. A malformed project id matches nothing.
func (s *Service) ListTasks(ctx context.Context, projectHex string) ([]models.Task, error) {
	var f store.TaskFilter
	if projectHex = strings.TrimSpace(projectHex); projectHex != "" {
		id, err := primitive.ObjectIDFromHex(projectHex)
		if err != nil {
			return []models.Task{}, observe("list_tasks", nil)
		}
		f.ProjectID = &id
	}
	tasks, err := s.store.Tasks.List(ctx, f)
	if err != nil {
		return nil, observe("list_tasks", storeErr("list tasks", "task", err))
	}
	return tasks, observe("list_tasks", nil)
}

// UpdateTask applies a whitelisted partial update and notifies the task's
// project room.
func (s *Service) UpdateTask(ctx context.Context, idHex string, in TaskUpdate) (models.Task, error) {
	id, err := parsePathID("task", idHex)
	if err != nil {
		return models.Task{}, observe("update_task", err)
	}
	patch, err := taskPatch(in)
	if err != nil {
		return models.Task{}, observe("update_task", err)
	}

	before, err := s.store.Tasks.GetByID(ctx, id)
	if err != nil {
		return models.Task{}, observe("update_task", storeErr("update task: load", "task", err))
	}
	updated, err := s.store.Tasks.Update(ctx, id, patch)
	if err != nil {
		return models.Task{}, observe("update_task", storeErr("update task", "task", err))
	}

	saved := s.writeNotifications(ctx, notify.ForTaskUpdated(before, updated, updated.UpdatedAt))

	s.toRoom(realtime.ProjectRoom(updated.ProjectID), realtime.EventTaskUpdated, updated)
	for _, n := range saved {
		s.toRoom(realtime.UserRoom(n.UserID), realtime.EventNotification, n)
	}
	return updated, observe("update_task", nil)
}

func taskPatch(in TaskUpdate) (models.TaskPatch, error) {
	var p models.TaskPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return p, validationf("title cannot be empty")
		}
		p.Title = &title
	}
	p.Description = in.Description
	if in.Status != nil {
		status := normalize.Token(*in.Status)
		if !models.IsValidTaskStatus(status) {
			return p, validationf("status must be one of: todo, in-progress, review, completed")
		}
		p.Status = &status
	}
	if in.Priority != nil {
		priority := normalize.Token(*in.Priority)
		if !models.IsValidTaskPriority(priority) {
			return p, validationf("priority must be one of: low, medium, high, urgent")
		}
		p.Priority = &priority
	}
	if in.AssigneeID.Set {
		if in.AssigneeID.Value == nil || strings.TrimSpace(*in.AssigneeID.Value) == "" {
			p.ClearAssignee = true
		} else {
			id, err := parseID("assigneeId", *in.AssigneeID.Value)
			if err != nil {
				return p, err
			}
			p.AssigneeID = &id
		}
	}
	if in.DueDate.Set {
		if in.DueDate.Value == nil || strings.TrimSpace(*in.DueDate.Value) == "" {
			p.ClearDueDate = true
		} else {
			d, err := parseDate("dueDate", *in.DueDate.Value)
			if err != nil {
				return p, err
			}
			p.DueDate = d
		}
	}
	p.Tags = in.Tags
	if err := nonNegative("timeEstimate", in.TimeEstimate); err != nil {
		return p, err
	}
	if err := nonNegative("timeSpent", in.TimeSpent); err != nil {
		return p, err
	}
	p.TimeEstimate = in.TimeEstimate
	p.TimeSpent = in.TimeSpent
	return p, nil
}

// DeleteTask removes a task immediately. Its comments are kept.
func (s *Service) DeleteTask(ctx context.Context, idHex string) error {
	id, err := parsePathID("task", idHex)
	if err != nil {
		return observe("delete_task", err)
	}
	t, err := s.store.Tasks.GetByID(ctx, id)
	if err != nil {
		return observe("delete_task", storeErr("delete task: load", "task", err))
	}
	if err := s.store.Tasks.Delete(ctx, id); err != nil {
		return observe("delete_task", storeErr("delete task", "task", err))
	}

	s.toRoom(realtime.ProjectRoom(t.ProjectID), realtime.EventTaskDeleted, map[string]string{
		"id":        id.Hex(),
		"projectId": t.ProjectID.Hex(),
	})
	return observe("delete_task", nil)
}

// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskReview     = "review"
	TaskCompleted  = "completed"
)

// TaskStatuses is the full set of allowed task statuses.
var TaskStatuses = []string{TaskTodo, TaskInProgress, TaskReview, TaskCompleted}

// Canonical task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// TaskPriorities is the full set of allowed task priorities.
var TaskPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// IsValidTaskStatus reports whether s is one of TaskStatuses.
func IsValidTaskStatus(s string) bool { return contains(TaskStatuses, s) }

// IsValidTaskPriority reports whether p is one of TaskPriorities.
func IsValidTaskPriority(p string) bool { return contains(TaskPriorities, p) }

// Task is a unit of work inside a project.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Status      string              `bson:"status" json:"status"`
	Priority    string              `bson:"priority" json:"priority"`
	AssigneeID  *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assigneeId,omitempty"`
	ReporterID  *primitive.ObjectID `bson:"reporter_id,omitempty" json:"reporterId,omitempty"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"projectId"`
	DueDate     *time.Time          `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Tags        []string            `bson:"tags" json:"tags"`

	TimeEstimate *float64 `bson:"time_estimate,omitempty" json:"timeEstimate,omitempty"` // hours
	TimeSpent    *float64 `bson:"time_spent,omitempty" json:"timeSpent,omitempty"`       // hours

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasAssignee reports whether the task is assigned to someone.
func (t Task) HasAssignee() bool {
	return t.AssigneeID != nil && !t.AssigneeID.IsZero()
}

// TaskPatch lists the fields of a Task that an update may change.
// ProjectID is deliberately absent: tasks do not move between projects.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssigneeID    *primitive.ObjectID
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
	Tags          *[]string
	TimeEstimate  *float64
	TimeSpent     *float64
}

// ApplyTo merges the patch onto t and stamps UpdatedAt.
func (tp TaskPatch) ApplyTo(t *Task, now time.Time) {
	if tp.Title != nil {
		t.Title = *tp.Title
	}
	if tp.Description != nil {
		t.Description = *tp.Description
	}
	if tp.Status != nil {
		t.Status = *tp.Status
	}
	if tp.Priority != nil {
		t.Priority = *tp.Priority
	}
	switch {
	case tp.ClearAssignee:
		t.AssigneeID = nil
	case tp.AssigneeID != nil:
		id := *tp.AssigneeID
		t.AssigneeID = &id
	}
	switch {
	case tp.ClearDueDate:
		t.DueDate = nil
	case tp.DueDate != nil:
		d := *tp.DueDate
		t.DueDate = &d
	}
	if tp.Tags != nil {
		t.Tags = append([]string{}, (*tp.Tags)...)
	}
	if tp.TimeEstimate != nil {
		v := *tp.TimeEstimate
		t.TimeEstimate = &v
	}
	if tp.TimeSpent != nil {
		v := *tp.TimeSpent
		t.TimeSpent = &v
	}
	t.UpdatedAt = now
}

// UpdateDoc returns the Mongo update document ($set and, when needed, $unset).
func (tp TaskPatch) UpdateDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	unset := bson.M{}
	if tp.Title != nil {
		set["title"] = *tp.Title
	}
	if tp.Description != nil {
		set["description"] = *tp.Description
	}
	if tp.Status != nil {
		set["status"] = *tp.Status
	}
	if tp.Priority != nil {
		set["priority"] = *tp.Priority
	}
	switch {
	case tp.ClearAssignee:
		unset["assignee_id"] = ""
	case tp.AssigneeID != nil:
		set["assignee_id"] = *tp.AssigneeID
	}
	switch {
	case tp.ClearDueDate:
		unset["due_date"] = ""
	case tp.DueDate != nil:
		set["due_date"] = *tp.DueDate
	}
	if tp.Tags != nil {
		set["tags"] = *tp.Tags
	}
	if tp.TimeEstimate != nil {
		set["time_estimate"] = *tp.TimeEstimate
	}
	if tp.TimeSpent != nil {
		set["time_spent"] = *tp.TimeSpent
	}

	upd := bson.M{"$set": set}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	return upd
}

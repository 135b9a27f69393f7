// internal/app/system/notify/notify.go

// Package notify derives notifications from task changes. The functions are
// pure: they decide what to send and leave persistence to the caller.
package notify

import (
	"fmt"
	"time"

	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskAssignedTitle is the title of the notification sent to a new assignee.
const TaskAssignedTitle = "New Task Assigned"

// ForTaskCreated returns the notifications owed for a newly created task:
// one task_assigned notification for the assignee, or none when the task is
// unassigned.
func ForTaskCreated(t models.Task, now time.Time) []models.Notification {
	if !t.HasAssignee() {
		return nil
	}
	return []models.Notification{{
		ID:      primitive.NewObjectID(),
		Type:    models.NotificationTaskAssigned,
		Title:   TaskAssignedTitle,
		Message: fmt.Sprintf("You've been assigned to \"%s\"", t.Title),
		UserID:  *t.AssigneeID,
		Read:    false,
		Data: map[string]string{
			"taskId":    t.ID.Hex(),
			"projectId": t.ProjectID.Hex(),
		},
		CreatedAt: now,
	}}
}

// ForTaskUpdated returns the notifications owed for an update. Reassignment
// does not notify anyone.
func ForTaskUpdated(before, after models.Task, now time.Time) []models.Notification {
	return nil
}

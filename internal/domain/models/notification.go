// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical notification types.
//
// Only NotificationTaskAssigned is produced today; the others are reserved
// for the client, which already knows how to render them.
const (
	NotificationTaskAssigned    = "task_assigned"
	NotificationCommentAdded    = "comment_added"
	NotificationProjectUpdated  = "project_updated"
	NotificationTaskCompleted   = "task_completed"
	NotificationDeadlineWarning = "deadline_warning"
)

// NotificationTypes is the full set of allowed notification types.
var NotificationTypes = []string{
	NotificationTaskAssigned,
	NotificationCommentAdded,
	NotificationProjectUpdated,
	NotificationTaskCompleted,
	NotificationDeadlineWarning,
}

// Notification is addressed to exactly one user. Read only moves from false
// to true.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type    string             `bson:"type" json:"type"`
	Title   string             `bson:"title" json:"title"`
	Message string             `bson:"message" json:"message"`
	UserID  primitive.ObjectID `bson:"user_id" json:"userId"`
	Read    bool               `bson:"read" json:"read"`

	// Data carries ids the client can use to navigate (e.g. taskId, projectId).
	Data map[string]string `bson:"data,omitempty" json:"data,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

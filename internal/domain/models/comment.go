// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a note left on a task. Comments are append-only.
type Comment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content  string             `bson:"content" json:"content"`
	AuthorID primitive.ObjectID `bson:"author_id" json:"userId"`
	TaskID   primitive.ObjectID `bson:"task_id" json:"taskId"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

package service

import (
	"context"
	"strings"

	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/system/htmlsanitize"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentInput is the body of POST /api/tasks/{taskId}/comments. The author
// defaults to the caller.
type CommentInput struct {
	Content string `json:"content" validate:"required,max=10000"`
	UserID  string `json:"userId"`
}

// CreateComment attaches a comment to a task and relays it to the task's
// project room.
func (s *Service) CreateComment(ctx context.Context, taskHex string, in CommentInput) (models.Comment, error) {
	taskID, err := parsePathID("task", taskHex)
	if err != nil {
		return models.Comment{}, observe("create_comment", err)
	}
	in.Content = htmlsanitize.Content(in.Content)
	if err := checkStruct(in); err != nil {
		return models.Comment{}, observe("create_comment", err)
	}
	author, err := requireCaller(ctx, "userId", in.UserID)
	if err != nil {
		return models.Comment{}, observe("create_comment", err)
	}

	// The task is only needed to find the project room, unless strict
	// references make it mandatory.
	task, taskErr := s.store.Tasks.GetByID(ctx, taskID)
	if taskErr != nil && s.opts.StrictReferences {
		return models.Comment{}, observe("create_comment", storeErr("create comment: lookup task", "task", taskErr))
	}

	now := s.now()
	c, err := s.store.Comments.Create(ctx, models.Comment{
		ID:        primitive.NewObjectID(),
		Content:   in.Content,
		AuthorID:  author,
		TaskID:    taskID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.Comment{}, observe("create_comment", storeErr("create comment", "comment", err))
	}

	if taskErr == nil {
		s.toRoom(realtime.ProjectRoom(task.ProjectID), realtime.EventCommentAdded, commentEvent{Comment: c, ProjectID: task.ProjectID})
	}
	return c, observe("create_comment", nil)
}

// commentEvent carries the project id so clients can route the comment
// without looking up its task.
type commentEvent struct {
	models.Comment
	ProjectID primitive.ObjectID `json:"projectId"`
}

// ListComments returns a task's comments, oldest first. A malformed task id
// matches nothing.
func (s *Service) ListComments(ctx context.Context, taskHex string) ([]models.Comment, error) {
	taskID, err := primitive.ObjectIDFromHex(strings.TrimSpace(taskHex))
	if err != nil {
		return []models.Comment{}, observe("list_comments", nil)
	}
	cs, err := s.store.Comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, observe("list_comments", storeErr("list comments", "comment", err))
	}
	return cs, observe("list_comments", nil)
}

package realtime

import "go.mongodb.org/mongo-driver/bson/primitive"

// Server -> client events.
const (
	EventConnected      = "connected"
	EventProjectCreated = "project-created"
	EventProjectUpdated = "project-updated"
	EventProjectDeleted = "project-deleted"
	EventTaskCreated    = "task-created"
	EventTaskUpdated    = "task-updated"
	EventTaskDeleted    = "task-deleted"
	EventCommentAdded   = "comment-added"
	EventNotification   = "notification"
	EventError          = "error"
)

// Client -> server commands. task-updated and comment-added are also
// accepted from clients and relayed to the project room.
const (
	CmdJoinUserRoom = "join-user-room"
	CmdJoinProject  = "join-project"
	CmdLeaveProject = "leave-project"
)

// ProjectRoom names the room for everyone watching a project.
func ProjectRoom(id primitive.ObjectID) string { return "project-" + id.Hex() }

// UserRoom names the private room of a single user.
func UserRoom(id primitive.ObjectID) string { return "user-" + id.Hex() }

package notify_test

import (
	"testing"
	"time"

	"github.com/dalemusser/projectflow/internal/app/system/notify"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestForTaskCreated_Assigned(t *testing.T) {
	who := primitive.NewObjectID()
	task := models.Task{ID: primitive.NewObjectID(), Title: "Write docs", ProjectID: primitive.NewObjectID(), AssigneeID: &who}
	now := time.Now().UTC()

	got := notify.ForTaskCreated(task, now)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	n := got[0]
	if n.Type != models.NotificationTaskAssigned {
		t.Errorf("type: got %q", n.Type)
	}
	if n.Title != "New Task Assigned" {
		t.Errorf("title: got %q", n.Title)
	}
	if n.Message != `You've been assigned to "Write docs"` {
		t.Errorf("message: got %q", n.Message)
	}
	if n.UserID != who {
		t.Errorf("recipient: got %s, want %s", n.UserID.Hex(), who.Hex())
	}
	if n.Read {
		t.Error("new notification should be unread")
	}
	if n.Data["taskId"] != task.ID.Hex() {
		t.Errorf("data taskId: got %q", n.Data["taskId"])
	}
}

func TestForTaskCreated_Unassigned(t *testing.T) {
	zero := primitive.NilObjectID
	cases := map[string]models.Task{
		"nil assignee":  {Title: "x"},
		"zero assignee": {Title: "x", AssigneeID: &zero},
	}
	for name, task := range cases {
		if got := notify.ForTaskCreated(task, time.Now()); len(got) != 0 {
			t.Errorf("%s: expected no notifications, got %d", name, len(got))
		}
	}
}

func TestForTaskUpdated_Reassignment(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	before := models.Task{Title: "x", AssigneeID: &a}
	after := models.Task{Title: "x", AssigneeID: &b}
	if got := notify.ForTaskUpdated(before, after, time.Now()); len(got) != 0 {
		t.Errorf("expected no notifications on reassignment, got %d", len(got))
	}
}

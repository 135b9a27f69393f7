// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectOnHold    = "on-hold"
)

// ProjectStatuses is the full set of allowed project statuses.
var ProjectStatuses = []string{ProjectActive, ProjectCompleted, ProjectOnHold}

// IsValidProjectStatus reports whether s is one of ProjectStatuses.
func IsValidProjectStatus(s string) bool {
	return contains(ProjectStatuses, s)
}

// Project groups tasks and the users working on them.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Color       string               `bson:"color,omitempty" json:"color,omitempty"`
	Status      string               `bson:"status" json:"status"`     // active | completed | on-hold
	Progress    int                  `bson:"progress" json:"progress"` // 0-100
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"createdBy"`

	StartDate   *time.Time `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Budget      *float64   `bson:"budget,omitempty" json:"budget,omitempty"`
	SpentBudget *float64   `bson:"spent_budget,omitempty" json:"spentBudget,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ProjectPatch lists the fields of a Project that an update may change.
// A nil field is left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
	Status      *string
	Progress    *int
	Members     *[]primitive.ObjectID
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *float64
	SpentBudget *float64
}

// ApplyTo merges the non-nil fields of the patch onto p and stamps UpdatedAt.
func (pp ProjectPatch) ApplyTo(p *Project, now time.Time) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Color != nil {
		p.Color = *pp.Color
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	if pp.Progress != nil {
		p.Progress = *pp.Progress
	}
	if pp.Members != nil {
		p.Members = append([]primitive.ObjectID(nil), (*pp.Members)...)
	}
	if pp.StartDate != nil {
		t := *pp.StartDate
		p.StartDate = &t
	}
	if pp.EndDate != nil {
		t := *pp.EndDate
		p.EndDate = &t
	}
	if pp.Budget != nil {
		v := *pp.Budget
		p.Budget = &v
	}
	if pp.SpentBudget != nil {
		v := *pp.SpentBudget
		p.SpentBudget = &v
	}
	p.UpdatedAt = now
}

// SetDoc returns the $set document for the patch, always including updated_at.
func (pp ProjectPatch) SetDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if pp.Name != nil {
		set["name"] = *pp.Name
	}
	if pp.Description != nil {
		set["description"] = *pp.Description
	}
	if pp.Color != nil {
		set["color"] = *pp.Color
	}
	if pp.Status != nil {
		set["status"] = *pp.Status
	}
	if pp.Progress != nil {
		set["progress"] = *pp.Progress
	}
	if pp.Members != nil {
		set["members"] = *pp.Members
	}
	if pp.StartDate != nil {
		set["start_date"] = *pp.StartDate
	}
	if pp.EndDate != nil {
		set["end_date"] = *pp.EndDate
	}
	if pp.Budget != nil {
		set["budget"] = *pp.Budget
	}
	if pp.SpentBudget != nil {
		set["spent_budget"] = *pp.SpentBudget
	}
	return set
}

package service

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Nullable tells an absent JSON field (Set=false) apart from an explicit
// null (Set=true, Value=nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Nullable holding v.
func Of[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

// Null returns an explicit null.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// ProjectUpdate is the whitelist of project fields a client may change.
type ProjectUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	Status      *string   `json:"status"`
	Progress    *int      `json:"progress"`
	Members     *[]string `json:"members"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	Budget      *float64  `json:"budget"`
	SpentBudget *float64  `json:"spentBudget"`
}

// TaskUpdate is the whitelist of task fields a client may change. A null
// assigneeId or dueDate clears it.
type TaskUpdate struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	Priority     *string          `json:"priority"`
	AssigneeID   Nullable[string] `json:"assigneeId"`
	DueDate      Nullable[string] `json:"dueDate"`
	Tags         *[]string        `json:"tags"`
	TimeEstimate *float64         `json:"timeEstimate"`
	TimeSpent    *float64         `json:"timeSpent"`
}

var projectImmutable = map[string]bool{
	"id": true, "_id": true, "createdBy": true, "createdAt": true, "updatedAt": true,
}

var taskImmutable = map[string]bool{
	"id": true, "_id": true, "projectId": true, "reporterId": true, "createdAt": true, "updatedAt": true,
}

// DecodeProjectUpdate reads a project patch, rejecting fields outside the
// whitelist.
func DecodeProjectUpdate(r io.Reader) (ProjectUpdate, error) {
	var in ProjectUpdate
	return in, decodeStrict(r, &in, projectImmutable)
}

// DecodeTaskUpdate reads a task patch, rejecting fields outside the
// whitelist.
func DecodeTaskUpdate(r io.Reader) (TaskUpdate, error) {
	var in TaskUpdate
	return in, decodeStrict(r, &in, taskImmutable)
}

func decodeStrict(r io.Reader, dst any, immutable map[string]bool) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return validationf("request body is empty")
	}
	if name, ok := unknownField(err); ok {
		if immutable[name] {
			return validationf("field %q cannot be updated", name)
		}
		return validationf("unknown field %q", name)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validationf("%s has the wrong type", typeErr.Field)
	}
	return validationf("malformed JSON body")
}

// unknownField extracts the name from encoding/json's
// `json: unknown field "x"` error.
func unknownField(err error) (string, bool) {
	const prefix = `json: unknown field "`
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(msg, prefix), `"`), true
}

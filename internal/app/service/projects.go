package service

import (
	"context"
	"errors"

	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/normalize"
	"github.com/dalemusser/projectflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProjectInput is the body of POST /api/projects.
type ProjectInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Status      string   `json:"status" validate:"omitempty,oneof=active completed on-hold"`
	Progress    *int     `json:"progress"`
	Members     []string `json:"members"`
	CreatedBy   string   `json:"createdBy"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      *float64 `json:"budget"`
	SpentBudget *float64 `json:"spentBudget"`
}

// ProjectView is a project with its member ids expanded to users.
type ProjectView struct {
	models.Project
	Members []models.User `json:"members"`
}

// CreateProject validates and stores a project, then announces it to every
// connected client.
func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	p, err := s.buildProject(ctx, in)
	if err != nil {
		return models.Project{}, observe("create_project", err)
	}

	if s.opts.StrictReferences {
		if _, err := s.store.Users.GetByID(ctx, p.CreatedBy); err != nil {
			return models.Project{}, observe("create_project", storeErr("create project: lookup creator", "user", err))
		}
	}

	created, err := s.store.Projects.Create(ctx, p)
	if err != nil {
		return models.Project{}, observe("create_project", storeErr("create project", "project", err))
	}

	s.toAll(realtime.EventProjectCreated, created)
	return created, observe("create_project", nil)
}

func (s *Service) buildProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	in.Name = normalize.Name(in.Name)
	in.Status = normalize.Token(in.Status)
	if err := checkStruct(in); err != nil {
		return models.Project{}, err
	}
	if err := progressInRange(in.Progress); err != nil {
		return models.Project{}, err
	}
	if err := nonNegative("budget", in.Budget); err != nil {
		return models.Project{}, err
	}
	if err := nonNegative("spentBudget", in.SpentBudget); err != nil {
		return models.Project{}, err
	}

	createdBy, err := requireCaller(ctx, "createdBy", in.CreatedBy)
	if err != nil {
		return models.Project{}, err
	}
	members, err := parseIDList("members", in.Members)
	if err != nil {
		return models.Project{}, err
	}
	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return models.Project{}, err
	}
	end, err := parseDate("endDate", in.EndDate)
	if err != nil {
		return models.Project{}, err
	}

	now := s.now()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		Status:      in.Status,
		Members:     members,
		CreatedBy:   createdBy,
		StartDate:   start,
		EndDate:     end,
		Budget:      in.Budget,
		SpentBudget: in.SpentBudget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}
	return p, nil
}

// ListProjects returns every project with members expanded. Member ids that
// no longer resolve are left out.
func (s *Service) ListProjects(ctx context.Context) ([]ProjectView, error) {
	projects, err := s.store.Projects.List(ctx)
	if err != nil {
		return nil, observe("list_projects", storeErr("list projects", "project", err))
	}

	var ids []primitive.ObjectID
	for _, p := range projects {
		ids = append(ids, p.Members...)
	}
	byID := map[primitive.ObjectID]models.User{}
	if len(ids) > 0 {
		users, err := s.store.Users.GetMany(ctx, ids)
		if err != nil {
			return nil, observe("list_projects", storeErr("list projects: expand members", "user", err))
		}
		for _, u := range users {
			byID[u.ID] = u
		}
	}

	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		v := ProjectView{Project: p, Members: []models.User{}}
		for _, id := range p.Members {
			if u, ok := byID[id]; ok {
				v.Members = append(v.Members, u)
			}
		}
		out = append(out, v)
	}
	return out, observe("list_projects", nil)
}

// UpdateProject applies a whitelisted partial update and notifies the
// project room.
func (s *Service) UpdateProject(ctx context.Context, idHex string, in ProjectUpdate) (models.Project, error) {
	id, err := parsePathID("project", idHex)
	if err != nil {
		return models.Project{}, observe("update_project", err)
	}
	patch, err := projectPatch(in)
	if err != nil {
		return models.Project{}, observe("update_project", err)
	}

	updated, err := s.store.Projects.Update(ctx, id, patch)
	if err != nil {
		return models.Project{}, observe("update_project", storeErr("update project", "project", err))
	}

	s.toRoom(realtime.ProjectRoom(updated.ID), realtime.EventProjectUpdated, updated)
	return updated, observe("update_project", nil)
}

func projectPatch(in ProjectUpdate) (models.ProjectPatch, error) {
	var p models.ProjectPatch
	if in.Name != nil {
		name := normalize.Name(*in.Name)
		if name == "" {
			return p, validationf("name cannot be empty")
		}
		p.Name = &name
	}
	p.Description = in.Description
	p.Color = in.Color
	if in.Status != nil {
		status := normalize.Token(*in.Status)
		if !models.IsValidProjectStatus(status) {
			return p, validationf("status must be one of: active, completed, on-hold")
		}
		p.Status = &status
	}
	if err := progressInRange(in.Progress); err != nil {
		return p, err
	}
	p.Progress = in.Progress
	if in.Members != nil {
		members, err := parseIDList("members", *in.Members)
		if err != nil {
			return p, err
		}
		p.Members = &members
	}
	if in.StartDate != nil {
		t, err := parseDate("startDate", *in.StartDate)
		if err != nil {
			return p, err
		}
		p.StartDate = t
	}
	if in.EndDate != nil {
		t, err := parseDate("endDate", *in.EndDate)
		if err != nil {
			return p, err
		}
		p.EndDate = t
	}
	if err := nonNegative("budget", in.Budget); err != nil {
		return p, err
	}
	if err := nonNegative("spentBudget", in.SpentBudget); err != nil {
		return p, err
	}
	p.Budget = in.Budget
	p.SpentBudget = in.SpentBudget
	return p, nil
}

// DeleteProject removes a project and its tasks. Comments on those tasks are
// left in place. Tasks go first, so a failure never leaves tasks without
// their project; with transactions both deletes commit together.
func (s *Service) DeleteProject(ctx context.Context, idHex string) error {
	id, err := parsePathID("project", idHex)
	if err != nil {
		return observe("delete_project", err)
	}

	var n int64
	remove := func(ctx context.Context) error {
		var err error
		if n, err = s.store.Tasks.DeleteByProject(ctx, id); err != nil {
			return storeErr("delete project: tasks", "task", err)
		}
		if err := s.store.Projects.Delete(ctx, id); err != nil {
			return storeErr("delete project", "project", err)
		}
		return nil
	}

	err = store.ErrTxnUnsupported
	if s.store.Tx != nil {
		err = s.store.Tx.WithTransaction(ctx, remove)
	}
	if errors.Is(err, store.ErrTxnUnsupported) {
		err = remove(ctx)
	}
	if err != nil {
		return observe("delete_project", err)
	}
	s.log.Info("project deleted", zap.String("project_id", id.Hex()), zap.Int64("tasks_deleted", n))

	s.toRoom(realtime.ProjectRoom(id), realtime.EventProjectDeleted, map[string]string{"id": id.Hex()})
	return observe("delete_project", nil)
}

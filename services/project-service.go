package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/repositories"
)

type CreateProjectInput struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Status      models.ProjectStatus   `json:"status"`
	Priority    models.ProjectPriority `json:"priority"`
}

type ProjectService struct {
	Projects repositories.ProjectRepository
	IDs      *IDGenerator
	Breaker  *gobreaker.CircuitBreaker
	Now      func() time.Time
}

func NewProjectService(projects repositories.ProjectRepository, ids *IDGenerator, breaker *gobreaker.CircuitBreaker) *ProjectService {
	return &ProjectService{Projects: projects, IDs: ids, Breaker: breaker, Now: time.Now}
}

// ParseListFilter validates raw query values. "all" and "" disable a filter.
func ParseListFilter(status, priority, search, sortBy string, validStatus, validPriority func(string) bool) (models.ListFilter, error) {
	f := models.ListFilter{Search: strings.TrimSpace(search)}
	if status != "" && status != "all" {
		if !validStatus(status) {
			return f, invalid(fmt.Sprintf("invalid status %q", status))
		}
		f.Status = status
	}
	if priority != "" && priority != "all" {
		if !validPriority(priority) {
			return f, invalid(fmt.Sprintf("invalid priority %q", priority))
		}
		f.Priority = priority
	}
	switch sortBy {
	case "", models.SortCreated:
		f.Sort = models.SortCreated
	case models.SortStatus, models.SortPriority:
		f.Sort = sortBy
	default:
		return f, invalid(fmt.Sprintf("invalid sort %q", sortBy))
	}
	return f, nil
}

// ParseProjectFilter is ParseListFilter for project enums.
func ParseProjectFilter(status, priority, search, sortBy string) (models.ListFilter, error) {
	return ParseListFilter(status, priority, search, sortBy,
		func(s string) bool { return models.ProjectStatus(s).Valid() },
		func(p string) bool { return models.ProjectPriority(p).Valid() },
	)
}

func cleanDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// sortProjects reorders a newest-first list; ties keep their order.
func sortProjects(projects []models.Project, by string) {
	switch by {
	case models.SortStatus:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].Status.Rank() < projects[j].Status.Rank()
		})
	case models.SortPriority:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].Priority.Weight() > projects[j].Priority.Weight()
		})
	}
}

func (s *ProjectService) List(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error) {
	projects, err := guard(s.Breaker, func() ([]models.Project, error) {
		return s.Projects.ListByOwner(ctx, ownerID, filter)
	})
	if err != nil {
		return nil, err
	}
	sortProjects(projects, filter.Sort)
	return projects, nil
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Status == "" || in.Priority == "" {
		return nil, invalid("name, status and priority are required")
	}
	if !in.Status.Valid() {
		return nil, invalid(fmt.Sprintf("invalid status %q", in.Status))
	}
	if !in.Priority.Valid() {
		return nil, invalid(fmt.Sprintf("invalid priority %q", in.Priority))
	}

	id, err := guard(s.Breaker, func() (string, error) {
		return s.IDs.New(ctx, s.Projects)
	})
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	project := &models.Project{
		ID:          id,
		Name:        name,
		Description: cleanDescription(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := guardErr(s.Breaker, func() error { return s.Projects.Create(ctx, project) }); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created by %s", id, ownerID)

	created, err := s.Get(ctx, ownerID, id)
	if err != nil {
		logging.Logger.Warnf("Event ID: PROJECT_RELOAD_FAILED, Description: Project %s was created but could not be reloaded: %v", id, err)
		return project, nil
	}
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*models.Project, error) {
	return guard(s.Breaker, func() (*models.Project, error) {
		return s.Projects.FindOwned(ctx, id, ownerID)
	})
}

// Update applies patch. A null name is ignored; an empty one is rejected.
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid(fmt.Sprintf("invalid status %q", *patch.Status))
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, invalid(fmt.Sprintf("invalid priority %q", *patch.Priority))
	}
	if patch.Description.Set {
		patch.Description.Value = cleanDescription(patch.Description.Value)
	}

	project, err := guard(s.Breaker, func() (*models.Project, error) {
		return s.Projects.Update(ctx, id, ownerID, patch, s.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_UPDATED, Description: Project %s updated", id)
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) (*models.Project, error) {
	project, err := guard(s.Breaker, func() (*models.Project, error) {
		return s.Projects.SoftDelete(ctx, id, ownerID, s.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s marked as deleted", id)
	return project, nil
}

func (s *ProjectService) Stats(ctx context.Context, ownerID string) (models.ProjectStats, error) {
	projects, err := s.List(ctx, ownerID, models.ListFilter{})
	if err != nil {
		return models.ProjectStats{}, err
	}
	stats := models.ProjectStats{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.ProjectDone:
			stats.Completed++
		case models.ProjectInProgress:
			stats.InProgress++
		case models.ProjectOnHold:
			stats.OnHold++
		}
	}
	return stats, nil
}

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

type CreateTaskInput struct {
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     models.OptionalTime `json:"dueDate"`
}

type TaskService struct {
	Tasks   repositories.TaskRepository
	IDs     *IDGenerator
	Breaker *gobreaker.CircuitBreaker
	Now     func() time.Time
}

func NewTaskService(tasks repositories.TaskRepository, ids *IDGenerator, breaker *gobreaker.CircuitBreaker) *TaskService {
	return &TaskService{Tasks: tasks, IDs: ids, Breaker: breaker, Now: time.Now}
}

func ParseTaskFilter(status, priority, search, sortBy string) (models.ListFilter, error) {
	return ParseListFilter(status, priority, search, sortBy,
		func(s string) bool { return models.TaskStatus(s).Valid() },
		func(p string) bool { return models.TaskPriority(p).Valid() },
	)
}

func sortTasks(tasks []models.Task, by string) {
	switch by {
	case models.SortStatus:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Status.Rank() < tasks[j].Status.Rank()
		})
	case models.SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Weight() > tasks[j].Priority.Weight()
		})
	}
}

func (s *TaskService) List(ctx context.Context, userID string, filter models.ListFilter) ([]models.Task, error) {
	tasks, err := guard(s.Breaker, func() ([]models.Task, error) {
		return s.Tasks.ListByUser(ctx, userID, filter)
	})
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, filter.Sort)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Status == "" || in.Priority == "" {
		return nil, invalid("title, status and priority are required")
	}
	if !in.Status.Valid() {
		return nil, invalid(fmt.Sprintf("invalid status %q", in.Status))
	}
	if !in.Priority.Valid() {
		return nil, invalid(fmt.Sprintf("invalid priority %q", in.Priority))
	}

	id, err := guard(s.Breaker, func() (string, error) {
		return s.IDs.New(ctx, s.Tasks)
	})
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	task := &models.Task{
		ID:          id,
		Title:       title,
		Description: cleanDescription(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate.Value,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := guardErr(s.Breaker, func() error { return s.Tasks.Create(ctx, task) }); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by %s", id, userID)

	created, err := s.Get(ctx, userID, id)
	if err != nil {
		logging.Logger.Warnf("Event ID: TASK_RELOAD_FAILED, Description: Task %s was created but could not be reloaded: %v", id, err)
		return task, nil
	}
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	return guard(s.Breaker, func() (*models.Task, error) {
		return s.Tasks.FindOwned(ctx, id, userID)
	})
}

func (s *TaskService) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		patch.Title = &title
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

	task, err := guard(s.Breaker, func() (*models.Task, error) {
		return s.Tasks.Update(ctx, id, userID, patch, s.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated", id)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) (*models.Task, error) {
	task, err := guard(s.Breaker, func() (*models.Task, error) {
		return s.Tasks.SoftDelete(ctx, id, userID, s.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s marked as deleted", id)
	return task, nil
}

func (s *TaskService) Stats(ctx context.Context, userID string) (models.TaskStats, error) {
	tasks, err := s.List(ctx, userID, models.ListFilter{})
	if err != nil {
		return models.TaskStats{}, err
	}
	stats := models.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskDone:
			stats.Completed++
		case models.TaskInProgress:
			stats.InProgress++
		case models.TaskTodo:
			stats.Todo++
		case models.TaskOnHold:
			stats.OnHold++
		}
	}
	return stats, nil
}

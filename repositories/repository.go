package repositories

import (
	"context"
	"errors"
	"time"

	"taskboard-service/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// IDChecker answers whether a primary key is already taken, soft-deleted rows
// included.
type IDChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type UserRepository interface {
	IDChecker
	Create(ctx context.Context, user *models.User) error
	// FindByEmail returns soft-deleted accounts too; callers decide.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type ProjectRepository interface {
	IDChecker
	Create(ctx context.Context, project *models.Project) error
	ListByOwner(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error)
	FindOwned(ctx context.Context, id, ownerID string) (*models.Project, error)
	Update(ctx context.Context, id, ownerID string, patch models.ProjectPatch, now time.Time) (*models.Project, error)
	SoftDelete(ctx context.Context, id, ownerID string, now time.Time) (*models.Project, error)
}

type TaskRepository interface {
	IDChecker
	Create(ctx context.Context, task *models.Task) error
	ListByUser(ctx context.Context, userID string, filter models.ListFilter) ([]models.Task, error)
	FindOwned(ctx context.Context, id, userID string) (*models.Task, error)
	Update(ctx context.Context, id, userID string, patch models.TaskPatch, now time.Time) (*models.Task, error)
	SoftDelete(ctx context.Context, id, userID string, now time.Time) (*models.Task, error)
}

type CommentRepository interface {
	IDChecker
	Create(ctx context.Context, comment *models.Comment) error
	ListByTask(ctx context.Context, taskID string) ([]models.Comment, error)
	// FindAuthored returns the comment only when userID wrote it.
	FindAuthored(ctx context.Context, id, userID string) (*models.Comment, error)
	UpdateContent(ctx context.Context, id, userID, content string, now time.Time) (*models.Comment, error)
	Delete(ctx context.Context, id, userID string) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Users    UserRepository
	Projects ProjectRepository
	Tasks    TaskRepository
	Comments CommentRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

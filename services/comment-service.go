package services

import (
	"context"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"taskboard-service/logging"
	"taskboard-service/models"
	"taskboard-service/repositories"
)

type CreateCommentInput struct {
	Content string `json:"content"`
	TaskID  string `json:"taskId"`
}

// CommentService manages comments on tasks. Comments hang off a live task
// owned by the caller; editing and deleting is reserved to the author.
type CommentService struct {
	Comments repositories.CommentRepository
	Tasks    repositories.TaskRepository
	IDs      *IDGenerator
	Breaker  *gobreaker.CircuitBreaker
	Now      func() time.Time
}

func NewCommentService(comments repositories.CommentRepository, tasks repositories.TaskRepository, ids *IDGenerator, breaker *gobreaker.CircuitBreaker) *CommentService {
	return &CommentService{Comments: comments, Tasks: tasks, IDs: ids, Breaker: breaker, Now: time.Now}
}

func (s *CommentService) ownedTask(ctx context.Context, userID, taskID string) error {
	_, err := guard(s.Breaker, func() (*models.Task, error) {
		return s.Tasks.FindOwned(ctx, taskID, userID)
	})
	return err
}

// authoredOnLiveTask loads a comment written by userID whose task is still
// live; comments under a deleted task are treated as missing.
func (s *CommentService) authoredOnLiveTask(ctx context.Context, userID, id string) error {
	comment, err := guard(s.Breaker, func() (*models.Comment, error) {
		return s.Comments.FindAuthored(ctx, id, userID)
	})
	if err != nil {
		return err
	}
	return s.ownedTask(ctx, userID, comment.TaskID)
}

func (s *CommentService) Create(ctx context.Context, userID string, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	taskID := strings.TrimSpace(in.TaskID)
	if content == "" || taskID == "" {
		return nil, invalid("content and taskId are required")
	}
	if err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}

	id, err := guard(s.Breaker, func() (string, error) {
		return s.IDs.New(ctx, s.Comments)
	})
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	comment := &models.Comment{
		ID:        id,
		Content:   content,
		TaskID:    taskID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := guardErr(s.Breaker, func() error { return s.Comments.Create(ctx, comment) }); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: COMMENT_CREATED, Description: Comment %s added to task %s", id, taskID)
	return comment, nil
}

func (s *CommentService) ListForTask(ctx context.Context, userID, taskID string) ([]models.Comment, error) {
	if err := s.ownedTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return guard(s.Breaker, func() ([]models.Comment, error) {
		return s.Comments.ListByTask(ctx, taskID)
	})
}

func (s *CommentService) Update(ctx context.Context, userID, id, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content cannot be empty")
	}
	if err := s.authoredOnLiveTask(ctx, userID, id); err != nil {
		return nil, err
	}
	return guard(s.Breaker, func() (*models.Comment, error) {
		return s.Comments.UpdateContent(ctx, id, userID, content, s.Now().UTC())
	})
}

func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	if err := s.authoredOnLiveTask(ctx, userID, id); err != nil {
		return err
	}
	err := guardErr(s.Breaker, func() error {
		return s.Comments.Delete(ctx, id, userID)
	})
	if err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: COMMENT_DELETED, Description: Comment %s deleted", id)
	return nil
}

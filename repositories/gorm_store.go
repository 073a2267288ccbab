package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"taskboard-service/logging"
	"taskboard-service/models"
)

const liveRecord = "deleted_at IS NULL"

// OpenGorm connects to PostgreSQL or SQLite. In-memory SQLite databases are
// pinned to a single connection so every query sees the same database.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		// Ownership is enforced in queries; both ends of a relation map onto
		// the same users table, which confuses constraint generation.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormlogger.New(logging.Logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// MigrateGorm creates or updates the tables.
func MigrateGorm(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Task{}, &models.Comment{}); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}
	return nil
}

// NewGormStore wires the GORM repositories onto db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:    &gormUsers{db: db},
		Projects: &gormProjects{db: db},
		Tasks:    &gormTasks{db: db},
		Comments: &gormComments{db: db},
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func countByID(ctx context.Context, db *gorm.DB, model interface{}, id string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyListFilter narrows q; textColumn is the name or title column searched
// alongside the description. LOWER folds ASCII only on SQLite and under the C
// collation, so a search with non-ASCII letters is not added to the query and
// is returned for the caller to match with containsFold.
func applyListFilter(q *gorm.DB, f models.ListFilter, textColumn string) (*gorm.DB, string) {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	s := strings.TrimSpace(f.Search)
	if s == "" {
		return q, ""
	}
	if strings.IndexFunc(s, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
		return q, s
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
	q = q.Where(`(LOWER(`+textColumn+`) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`, pattern, pattern)
	return q, ""
}

func containsFold(search, text string, description *string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(text), needle) {
		return true
	}
	return description != nil && strings.Contains(strings.ToLower(*description), needle)
}

type gormUsers struct {
	db *gorm.DB
}

func (r *gormUsers) Exists(ctx context.Context, id string) (bool, error) {
	return countByID(ctx, r.db, &models.User{}, id)
}

func (r *gormUsers) Create(ctx context.Context, user *models.User) error {
	return translateGormError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *gormUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *gormUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

type gormProjects struct {
	db *gorm.DB
}

func (r *gormProjects) Exists(ctx context.Context, id string) (bool, error) {
	return countByID(ctx, r.db, &models.Project{}, id)
}

func (r *gormProjects) Create(ctx context.Context, project *models.Project) error {
	return translateGormError(r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error)
}

func (r *gormProjects) ListByOwner(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Preload("Owner").Where("owner_id = ? AND "+liveRecord, ownerID)
	q, search := applyListFilter(q, filter, "name")

	projects := []models.Project{}
	if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if search != "" {
		matched := projects[:0]
		for _, p := range projects {
			if containsFold(search, p.Name, p.Description) {
				matched = append(matched, p)
			}
		}
		projects = matched
	}
	return projects, nil
}

func (r *gormProjects) FindOwned(ctx context.Context, id, ownerID string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Preload("Owner").
		Where("id = ? AND owner_id = ? AND "+liveRecord, id, ownerID).
		First(&project).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &project, nil
}

func (r *gormProjects) Update(ctx context.Context, id, ownerID string, patch models.ProjectPatch, now time.Time) (*models.Project, error) {
	updates := map[string]interface{}{"updated_at": now}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description.Set {
		updates["description"] = nullableString(patch.Description.Value)
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		updates["priority"] = string(*patch.Priority)
	}

	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND owner_id = ? AND "+liveRecord, id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update project %s: %w", id, translateGormError(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindOwned(ctx, id, ownerID)
}

func (r *gormProjects) SoftDelete(ctx context.Context, id, ownerID string, now time.Time) (*models.Project, error) {
	res := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND owner_id = ? AND "+liveRecord, id, ownerID).
		Updates(map[string]interface{}{"deleted_at": now, "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &project, nil
}

type gormTasks struct {
	db *gorm.DB
}

func (r *gormTasks) Exists(ctx context.Context, id string) (bool, error) {
	return countByID(ctx, r.db, &models.Task{}, id)
}

func (r *gormTasks) Create(ctx context.Context, task *models.Task) error {
	return translateGormError(r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error)
}

func (r *gormTasks) ListByUser(ctx context.Context, userID string, filter models.ListFilter) ([]models.Task, error) {
	q := r.db.WithContext(ctx).Preload("User").Where("user_id = ? AND "+liveRecord, userID)
	q, search := applyListFilter(q, filter, "title")

	tasks := []models.Task{}
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if search != "" {
		matched := tasks[:0]
		for _, t := range tasks {
			if containsFold(search, t.Title, t.Description) {
				matched = append(matched, t)
			}
		}
		tasks = matched
	}
	return tasks, nil
}

func (r *gormTasks) FindOwned(ctx context.Context, id, userID string) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Preload("User").
		Where("id = ? AND user_id = ? AND "+liveRecord, id, userID).
		First(&task).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &task, nil
}

func (r *gormTasks) Update(ctx context.Context, id, userID string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	updates := map[string]interface{}{"updated_at": now}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description.Set {
		updates["description"] = nullableString(patch.Description.Value)
	}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		updates["priority"] = string(*patch.Priority)
	}
	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = *patch.DueDate.Value
		}
	}

	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ? AND "+liveRecord, id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", id, translateGormError(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindOwned(ctx, id, userID)
}

func (r *gormTasks) SoftDelete(ctx context.Context, id, userID string, now time.Time) (*models.Task, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ? AND "+liveRecord, id, userID).
		Updates(map[string]interface{}{"deleted_at": now, "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &task, nil
}

type gormComments struct {
	db *gorm.DB
}

func (r *gormComments) Exists(ctx context.Context, id string) (bool, error) {
	return countByID(ctx, r.db, &models.Comment{}, id)
}

func (r *gormComments) Create(ctx context.Context, comment *models.Comment) error {
	return translateGormError(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *gormComments) ListByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (r *gormComments) FindAuthored(ctx context.Context, id, userID string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&comment).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &comment, nil
}

func (r *gormComments) UpdateContent(ctx context.Context, id, userID, content string, now time.Time) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"content": content, "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update comment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &comment, nil
}

func (r *gormComments) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// nullableString turns a nil pointer into an untyped nil so the column is
// written as NULL.
func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

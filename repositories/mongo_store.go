package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskboard-service/logging"
	"taskboard-service/models"
)

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("database connection for MongoDB failed: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB connection ping error: %w", err)
	}
	return client, nil
}

// MigrateMongo creates the indexes the repositories rely on.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"projects": {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"tasks": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "task_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
		logging.Logger.Infof("Event ID: DB_INDEXES_CREATED, Description: Indexes ensured on collection %s", collection)
	}
	return nil
}

// NewMongoStore wires the MongoDB repositories onto db.
func NewMongoStore(db *mongo.Database) *Store {
	users := db.Collection("users")
	return &Store{
		Users:    &mongoUsers{coll: users},
		Projects: &mongoProjects{coll: db.Collection("projects"), users: users},
		Tasks:    &mongoTasks{coll: db.Collection("tasks"), users: users},
		Comments: &mongoComments{coll: db.Collection("comments")},
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func existsByID(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ownedFilter matches a live record by id and owner. deleted_at: nil matches
// both explicit null and a missing field.
func ownedFilter(id, ownerField, ownerID string) bson.M {
	return bson.M{"_id": id, ownerField: ownerID, "deleted_at": nil}
}

// listFilter mirrors applyListFilter for MongoDB.
func listFilter(ownerField, ownerID, textField string, f models.ListFilter) bson.M {
	filter := bson.M{ownerField: ownerID, "deleted_at": nil}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{textField: pattern},
			bson.M{"description": pattern},
		}
	}
	return filter
}

func optionalStringValue(o models.OptionalString) interface{} {
	if o.Value == nil {
		return nil
	}
	return *o.Value
}

func projectSet(patch models.ProjectPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description.Set {
		set["description"] = optionalStringValue(patch.Description)
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	return set
}

func taskSet(patch models.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description.Set {
		set["description"] = optionalStringValue(patch.Description)
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		set["priority"] = string(*patch.Priority)
	}
	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			set["due_date"] = nil
		} else {
			set["due_date"] = *patch.DueDate.Value
		}
	}
	return set
}

func findSummary(ctx context.Context, users *mongo.Collection, id string) (*models.UserSummary, error) {
	var summary models.UserSummary
	opts := options.FindOne().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1})
	if err := users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&summary); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (r *mongoUsers) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *mongoUsers) Create(ctx context.Context, user *models.User) error {
	_, err := r.coll.InsertOne(ctx, user)
	return translateMongoError(err)
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translateMongoError(err)
	}
	return &user, nil
}

type mongoProjects struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func (r *mongoProjects) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *mongoProjects) Create(ctx context.Context, project *models.Project) error {
	_, err := r.coll.InsertOne(ctx, project)
	return translateMongoError(err)
}

func (r *mongoProjects) ListByOwner(ctx context.Context, ownerID string, filter models.ListFilter) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, listFilter("owner_id", ownerID, "name", filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	owner, err := findSummary(ctx, r.users, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project owner: %w", err)
	}
	for i := range projects {
		projects[i].Owner = owner
	}
	return projects, nil
}

func (r *mongoProjects) FindOwned(ctx context.Context, id, ownerID string) (*models.Project, error) {
	var project models.Project
	if err := r.coll.FindOne(ctx, ownedFilter(id, "owner_id", ownerID)).Decode(&project); err != nil {
		return nil, translateMongoError(err)
	}
	owner, err := findSummary(ctx, r.users, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project owner: %w", err)
	}
	project.Owner = owner
	return &project, nil
}

func (r *mongoProjects) Update(ctx context.Context, id, ownerID string, patch models.ProjectPatch, now time.Time) (*models.Project, error) {
	var project models.Project
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, ownedFilter(id, "owner_id", ownerID), bson.M{"$set": projectSet(patch, now)}, opts).Decode(&project)
	if err != nil {
		return nil, translateMongoError(err)
	}
	owner, err := findSummary(ctx, r.users, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project owner: %w", err)
	}
	project.Owner = owner
	return &project, nil
}

func (r *mongoProjects) SoftDelete(ctx context.Context, id, ownerID string, now time.Time) (*models.Project, error) {
	var project models.Project
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}}
	if err := r.coll.FindOneAndUpdate(ctx, ownedFilter(id, "owner_id", ownerID), update, opts).Decode(&project); err != nil {
		return nil, translateMongoError(err)
	}
	return &project, nil
}

type mongoTasks struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func (r *mongoTasks) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *mongoTasks) Create(ctx context.Context, task *models.Task) error {
	_, err := r.coll.InsertOne(ctx, task)
	return translateMongoError(err)
}

func (r *mongoTasks) ListByUser(ctx context.Context, userID string, filter models.ListFilter) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, listFilter("user_id", userID, "title", filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	user, err := findSummary(ctx, r.users, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task owner: %w", err)
	}
	for i := range tasks {
		tasks[i].User = user
	}
	return tasks, nil
}

func (r *mongoTasks) FindOwned(ctx context.Context, id, userID string) (*models.Task, error) {
	var task models.Task
	if err := r.coll.FindOne(ctx, ownedFilter(id, "user_id", userID)).Decode(&task); err != nil {
		return nil, translateMongoError(err)
	}
	user, err := findSummary(ctx, r.users, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task owner: %w", err)
	}
	task.User = user
	return &task, nil
}

func (r *mongoTasks) Update(ctx context.Context, id, userID string, patch models.TaskPatch, now time.Time) (*models.Task, error) {
	var task models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, ownedFilter(id, "user_id", userID), bson.M{"$set": taskSet(patch, now)}, opts).Decode(&task)
	if err != nil {
		return nil, translateMongoError(err)
	}
	user, err := findSummary(ctx, r.users, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task owner: %w", err)
	}
	task.User = user
	return &task, nil
}

func (r *mongoTasks) SoftDelete(ctx context.Context, id, userID string, now time.Time) (*models.Task, error) {
	var task models.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}}
	if err := r.coll.FindOneAndUpdate(ctx, ownedFilter(id, "user_id", userID), update, opts).Decode(&task); err != nil {
		return nil, translateMongoError(err)
	}
	return &task, nil
}

type mongoComments struct {
	coll *mongo.Collection
}

func (r *mongoComments) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *mongoComments) Create(ctx context.Context, comment *models.Comment) error {
	_, err := r.coll.InsertOne(ctx, comment)
	return translateMongoError(err)
}

func (r *mongoComments) ListByTask(ctx context.Context, taskID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *mongoComments) FindAuthored(ctx context.Context, id, userID string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&comment); err != nil {
		return nil, translateMongoError(err)
	}
	return &comment, nil
}

func (r *mongoComments) UpdateContent(ctx context.Context, id, userID, content string, now time.Time) (*models.Comment, error) {
	var comment models.Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updated_at": now}}
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, update, opts).Decode(&comment); err != nil {
		return nil, translateMongoError(err)
	}
	return &comment, nil
}

func (r *mongoComments) Delete(ctx context.Context, id, userID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

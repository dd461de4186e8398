package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/natthaphonb/taskhub-api/internal/model"
)

// TaskRepository defines the interface for task document operations.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	GetTask(ctx context.Context, id string) (*model.Task, error)

	// ListTasksByProject returns the project's tasks, newest first.
	ListTasksByProject(ctx context.Context, projectID string) ([]*model.Task, error)

	UpdateTask(ctx context.Context, id string, params UpdateTaskParams) (*model.Task, error)
	AddComment(ctx context.Context, id string, comment model.Comment) error
	DeleteTask(ctx context.Context, id string) error

	// DeleteTasksByProject removes every task under the project. Invoked only
	// by the project delete cascade.
	DeleteTasksByProject(ctx context.Context, projectID string) (int64, error)

	// NextSerialNumber atomically reserves the next per-project serial number.
	// Numbers are never reused, even after task deletion.
	NextSerialNumber(ctx context.Context, projectID string) (int64, error)
}

// UpdateTaskParams defines the optional parameters for updating a task.
// Only the fields that are not nil will be updated; these are the only task
// fields a caller may mutate.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	Deadline    *time.Time
}

const (
	taskCollection    = "tasks"
	counterCollection = "counters"
)

type taskMongoRepository struct {
	db *mongo.Database
}

func NewTaskMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) TaskRepository {
	collection := db.Collection(taskCollection)

	indexes := []mongo.IndexModel{
		{
			// Backstop for the counter: two writes can never land the same
			// serial in one project.
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "serial_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create task indexes")
	}

	return &taskMongoRepository{db: db}
}

func (r *taskMongoRepository) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Comments == nil {
		task.Comments = []model.Comment{}
	}

	result, err := r.db.Collection(taskCollection).InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		task.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return task, nil
}

func (r *taskMongoRepository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var task model.Task
	if err := r.db.Collection(taskCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) ListTasksByProject(ctx context.Context, projectID string) ([]*model.Task, error) {
	objectID, err := bson.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(taskCollection).Find(ctx, bson.M{"project_id": objectID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []*model.Task
	for cursor.Next(ctx) {
		var task model.Task
		if err := cursor.Decode(&task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskMongoRepository) UpdateTask(
	ctx context.Context,
	id string,
	params UpdateTaskParams,
) (*model.Task, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	// Build update query
	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Type != nil {
		updateMap["type"] = *params.Type
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}
	if params.Deadline != nil {
		updateMap["deadline"] = *params.Deadline
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no task fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(taskCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var task model.Task
	if err := result.Decode(&task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskMongoRepository) AddComment(ctx context.Context, id string, comment model.Comment) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.db.Collection(taskCollection).UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *taskMongoRepository) DeleteTask(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.db.Collection(taskCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *taskMongoRepository) DeleteTasksByProject(ctx context.Context, projectID string) (int64, error) {
	objectID, err := bson.ObjectIDFromHex(projectID)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(taskCollection).DeleteMany(ctx, bson.M{"project_id": objectID})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

// NextSerialNumber bumps a per-project counter document with an atomic
// upserted $inc, so concurrent creates in the same project observe distinct
// values.
func (r *taskMongoRepository) NextSerialNumber(ctx context.Context, projectID string) (int64, error) {
	counterID := fmt.Sprintf("task_serial:%s", projectID)

	result := r.db.Collection(counterCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return 0, result.Err()
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := result.Decode(&counter); err != nil {
		return 0, err
	}

	return counter.Seq, nil
}

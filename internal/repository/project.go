package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/natthaphonb/taskhub-api/internal/model"
)

// ProjectRepository defines the interface for project document operations.
// Membership filtering happens in the usecase layer against the embedded
// collaborator list; the repository only narrows list queries.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)

	// ListProjectsForUser returns projects where the user is the creator or a
	// collaborator, newest first.
	ListProjectsForUser(ctx context.Context, userID string) ([]*model.Project, error)

	UpdateProject(ctx context.Context, id string, params UpdateProjectParams) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// UpdateProjectParams defines the optional parameters for updating a project.
// Only the fields that are not nil will be updated. Collaborators and Boards
// replace the embedded lists wholesale.
type UpdateProjectParams struct {
	Title         *string
	Description   *string
	RepoLink      *string
	Type          *model.ProjectType
	Status        *model.ProjectStatus
	Collaborators *[]model.Collaborator
	Boards        *[]model.Board
}

const projectCollection = "projects"

type projectMongoRepository struct {
	db *mongo.Database
}

func NewProjectMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ProjectRepository {
	collection := db.Collection(projectCollection)

	indexes := []mongo.IndexModel{
		{
			// Title uniqueness is per creator, enforced by the store so
			// concurrent creates cannot both slip past a pre-check.
			Keys:    bson.D{{Key: "created_by", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "short_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "collaborators.user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create project indexes")
	}

	return &projectMongoRepository{db: db}
}

func (r *projectMongoRepository) CreateProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	result, err := r.db.Collection(projectCollection).InsertOne(ctx, project)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		project.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return project, nil
}

func (r *projectMongoRepository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var project model.Project
	if err := r.db.Collection(projectCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectMongoRepository) ListProjectsForUser(ctx context.Context, userID string) ([]*model.Project, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"$or": []bson.M{
			{"created_by": objectID},
			{"collaborators.user_id": objectID},
		},
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(projectCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var projects []*model.Project
	for cursor.Next(ctx) {
		var project model.Project
		if err := cursor.Decode(&project); err != nil {
			return nil, err
		}
		projects = append(projects, &project)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectMongoRepository) UpdateProject(
	ctx context.Context,
	id string,
	params UpdateProjectParams,
) (*model.Project, error) {
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
	if params.RepoLink != nil {
		updateMap["repo_link"] = *params.RepoLink
	}
	if params.Type != nil {
		updateMap["type"] = *params.Type
	}
	if params.Status != nil {
		updateMap["status"] = *params.Status
	}
	if params.Collaborators != nil {
		updateMap["collaborators"] = *params.Collaborators
	}
	if params.Boards != nil {
		updateMap["boards"] = *params.Boards
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no project fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(projectCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var project model.Project
	if err := result.Decode(&project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (r *projectMongoRepository) DeleteProject(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	result, err := r.db.Collection(projectCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

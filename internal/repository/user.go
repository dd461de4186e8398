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

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)

	// GetUserSummaries batch-fetches display projections for the given user
	// ids, keyed by hex id. Missing users are simply absent from the map.
	GetUserSummaries(ctx context.Context, ids []bson.ObjectID) (map[string]model.UserSummary, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated. ClearVerificationCode
// removes the pending code and its expiry in the same write that applies the
// other fields.
type UpdateUserParams struct {
	PasswordHash              *string
	Verified                  *bool
	VerificationCode          *string
	VerificationCodeExpiresAt *time.Time
	ClearVerificationCode     bool
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never match a document.
		return nil, mongo.ErrNoDocuments
	}

	var user model.User
	if err := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.Collection(userCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	setMap := bson.M{}
	if params.PasswordHash != nil {
		setMap["password_hash"] = *params.PasswordHash
	}
	if params.Verified != nil {
		setMap["verified"] = *params.Verified
	}
	if params.VerificationCode != nil {
		setMap["verification_code"] = *params.VerificationCode
	}
	if params.VerificationCodeExpiresAt != nil {
		setMap["verification_code_expires_at"] = *params.VerificationCodeExpiresAt
	}

	if len(setMap) == 0 && !params.ClearVerificationCode {
		return nil, errors.New("no user fields to update")
	}

	setMap["updated_at"] = time.Now()

	update := bson.M{"$set": setMap}
	if params.ClearVerificationCode {
		update["$unset"] = bson.M{
			"verification_code":            "",
			"verification_code_expires_at": "",
		}
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserSummaries(
	ctx context.Context,
	ids []bson.ObjectID,
) (map[string]model.UserSummary, error) {
	summaries := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	findOptions := options.Find().
		SetProjection(bson.M{"full_name": 1, "username": 1})

	cursor, err := r.db.Collection(userCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var summary model.UserSummary
		if err := cursor.Decode(&summary); err != nil {
			return nil, err
		}
		summaries[summary.ID.Hex()] = summary
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

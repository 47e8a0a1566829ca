package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/vision-assist/internal/auth"
	"github.com/ayush/vision-assist/internal/models"
)

// MongoUserStore is the credential store: one document per registered user,
// with uniqueness of username and email delegated to unique indexes.
type MongoUserStore struct {
	col *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database, collection string) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(collection)}
}

// EnsureIndexes creates the unique username/email indexes and the api_key
// lookup index. Safe to call on every startup.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "api_key", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// insertErr and updateErr translate unique-index violations into the
// taxonomy error for their operation. Insert collides on username or email;
// an update can only collide on email, even when the racing writer slipped
// past the EmailTaken pre-check.
func insertErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrDuplicateUser
	}
	return fmt.Errorf("mongo insert user: %w", err)
}

func updateErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrEmailInUse
	}
	return fmt.Errorf("mongo update user: %w", err)
}

func (s *MongoUserStore) Insert(ctx context.Context, u *models.User) error {
	_, err := s.col.InsertOne(ctx, u)
	return insertErr(err)
}

func (s *MongoUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *MongoUserStore) GetByAPIKey(ctx context.Context, key string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"api_key": key})
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &u, nil
}

// EmailTaken reports whether email is already held by a user other than
// exceptUsername.
func (s *MongoUserStore) EmailTaken(ctx context.Context, email, exceptUsername string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{
		"email":    email,
		"username": bson.M{"$ne": exceptUsername},
	})
	if err != nil {
		return false, fmt.Errorf("mongo email lookup: %w", err)
	}
	return n > 0, nil
}

func (s *MongoUserStore) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": fields},
	)
	if err != nil {
		return updateErr(err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) SetLastLogin(ctx context.Context, username string, t time.Time) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"last_login": t}},
	)
	if err != nil {
		return fmt.Errorf("mongo update last_login: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Delete(ctx context.Context, username string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return fmt.Errorf("mongo delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return auth.ErrNotFound
	}
	return nil
}

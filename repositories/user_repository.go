package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/daansetu/daansetu_backend/models"
)

// UserStore is the persistence surface the services need for users.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByReferralCode looks up the legacy denormalized User.referralCode
	// field, which pre-migration data may still rely on.
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	FindByParent(ctx context.Context, parentID primitive.ObjectID) ([]models.User, error)
	Insert(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// Activate flips a pending user to active and records the approver as the
	// user's parent coordinator.
	Activate(ctx context.Context, id primitive.ObjectID, parentID primitive.ObjectID) error
	// SetReferralCode writes the read-only cache field on the user document.
	SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error
}

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"referralCode": code}).Decode(&user)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByParent(ctx context.Context, parentID primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"parentCoordinatorId": parentID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, user)
	return mapWriteErr(err)
}

func (r *MongoUserRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Activate(ctx context.Context, id primitive.ObjectID, parentID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":              models.StatusActive,
			"parentCoordinatorId": parentID,
			"updatedAt":           time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (r *MongoUserRepository) SetReferralCode(ctx context.Context, id primitive.ObjectID, code string) error {
	_, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"referralCode": code,
			"updatedAt":    time.Now(),
		},
	})
	return err
}

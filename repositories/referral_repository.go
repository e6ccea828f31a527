package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/daansetu/daansetu_backend/models"
)

// ReferralCodeStore persists referral codes. Insert must surface a unique
// index violation as ErrDuplicateKey so the registry can treat "another
// writer won" as success.
type ReferralCodeStore interface {
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ReferralCode, error)
	FindByCode(ctx context.Context, code string) (*models.ReferralCode, error)
	Insert(ctx context.Context, code *models.ReferralCode) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	// IncrementUsage bumps the running totals atomically. Never
	// read-modify-write: concurrent donations hit the same code.
	IncrementUsage(ctx context.Context, id primitive.ObjectID, amount int64) error
}

type MongoReferralCodeRepository struct {
	collection *mongo.Collection
}

func NewReferralCodeRepository(db *mongo.Database) *MongoReferralCodeRepository {
	return &MongoReferralCodeRepository{collection: db.Collection("referral_codes")}
}

func (r *MongoReferralCodeRepository) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.ReferralCode, error) {
	var code models.ReferralCode
	err := r.collection.FindOne(ctx, bson.M{"ownerUserId": ownerID}).Decode(&code)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &code, nil
}

func (r *MongoReferralCodeRepository) FindByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var rc models.ReferralCode
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&rc)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &rc, nil
}

func (r *MongoReferralCodeRepository) Insert(ctx context.Context, code *models.ReferralCode) error {
	now := time.Now()
	code.CreatedAt = now
	code.UpdatedAt = now
	if code.ID.IsZero() {
		code.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, code)
	return mapWriteErr(err)
}

func (r *MongoReferralCodeRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"active":    false,
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

func (r *MongoReferralCodeRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID, amount int64) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{
			"totalDonations": 1,
			"totalAmount":    amount,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

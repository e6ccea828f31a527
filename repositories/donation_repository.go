package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/daansetu/daansetu_backend/models"
)

// DonationStore persists donations. MarkDistributed is the at-most-once
// guard: it is a conditional update that only matches distributed == false.
type DonationStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Donation, error)
	Insert(ctx context.Context, donation *models.Donation) error
	// MarkPaymentResult records the gateway callback outcome; only a PENDING
	// donation can transition.
	MarkPaymentResult(ctx context.Context, id primitive.ObjectID, status, paymentID string) error
	// MarkDistributed flips the distributed flag together with the totals.
	// Returns ErrConflict when the donation was already distributed (or does
	// not match the success precondition any more).
	MarkDistributed(ctx context.Context, id primitive.ObjectID, totalCommission, orgFund int64, at time.Time) error
	ListByAttributed(ctx context.Context, userIDs []primitive.ObjectID, page, limit int) ([]models.Donation, int64, error)
}

type MongoDonationRepository struct {
	collection *mongo.Collection
}

func NewDonationRepository(db *mongo.Database) *MongoDonationRepository {
	return &MongoDonationRepository{collection: db.Collection("donations")}
}

func (r *MongoDonationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&donation)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &donation, nil
}

func (r *MongoDonationRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	var donation models.Donation
	err := r.collection.FindOne(ctx, bson.M{"gatewayOrderId": orderID}).Decode(&donation)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &donation, nil
}

func (r *MongoDonationRepository) Insert(ctx context.Context, donation *models.Donation) error {
	now := time.Now()
	donation.CreatedAt = now
	donation.UpdatedAt = now
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, donation)
	return mapWriteErr(err)
}

func (r *MongoDonationRepository) MarkPaymentResult(ctx context.Context, id primitive.ObjectID, status, paymentID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "paymentStatus": models.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"paymentStatus":    status,
			"gatewayPaymentId": paymentID,
			"updatedAt":        time.Now(),
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

func (r *MongoDonationRepository) MarkDistributed(ctx context.Context, id primitive.ObjectID, totalCommission, orgFund int64, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":           id,
			"distributed":   false,
			"paymentStatus": models.PaymentStatusSuccess,
		},
		bson.M{"$set": bson.M{
			"distributed":                true,
			"distributedAt":              at,
			"totalCommissionDistributed": totalCommission,
			"organizationFundAmount":     orgFund,
			"updatedAt":                  at,
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

func (r *MongoDonationRepository) ListByAttributed(ctx context.Context, userIDs []primitive.ObjectID, page, limit int) ([]models.Donation, int64, error) {
	filter := bson.M{"attributedTo": bson.M{"$in": userIDs}}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

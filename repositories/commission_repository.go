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

// CommissionLogStore persists the per-beneficiary commission entries created
// at distribution time.
type CommissionLogStore interface {
	InsertMany(ctx context.Context, logs []models.CommissionLog) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CommissionLog, error)
	FindByDonation(ctx context.Context, donationID primitive.ObjectID) ([]models.CommissionLog, error)
	// MarkPaid is conditional on paid == false; ErrConflict means the entry
	// was already paid.
	MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.CommissionLog, int64, error)
	// SummaryForUser returns total earned and total paid amounts.
	SummaryForUser(ctx context.Context, userID primitive.ObjectID) (earned int64, paid int64, err error)
}

type MongoCommissionLogRepository struct {
	collection *mongo.Collection
}

func NewCommissionLogRepository(db *mongo.Database) *MongoCommissionLogRepository {
	return &MongoCommissionLogRepository{collection: db.Collection("commission_logs")}
}

func (r *MongoCommissionLogRepository) InsertMany(ctx context.Context, logs []models.CommissionLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(logs))
	now := time.Now()
	for i := range logs {
		if logs[i].ID.IsZero() {
			logs[i].ID = primitive.NewObjectID()
		}
		logs[i].CreatedAt = now
		docs = append(docs, logs[i])
	}
	// Unordered so a retry that overlaps rows from an earlier attempt still
	// writes the rows that attempt missed.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return mapWriteErr(err)
}

func (r *MongoCommissionLogRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CommissionLog, error) {
	var entry models.CommissionLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		return nil, mapFindErr(err)
	}
	return &entry, nil
}

func (r *MongoCommissionLogRepository) FindByDonation(ctx context.Context, donationID primitive.ObjectID) ([]models.CommissionLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"donationId": donationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.CommissionLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *MongoCommissionLogRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID, paymentMethod string) error {
	now := time.Now()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "paid": false},
		bson.M{"$set": bson.M{
			"paid":          true,
			"paidAt":        now,
			"transactionId": transactionID,
			"paymentMethod": paymentMethod,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from already paid
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (r *MongoCommissionLogRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]models.CommissionLog, int64, error) {
	filter := bson.M{"userId": userID}

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

	var logs []models.CommissionLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *MongoCommissionLogRepository) SummaryForUser(ctx context.Context, userID primitive.ObjectID) (int64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$paid",
			"amount": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Paid   bool  `bson:"_id"`
		Amount int64 `bson:"amount"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}

	var earned, paid int64
	for _, res := range results {
		earned += res.Amount
		if res.Paid {
			paid += res.Amount
		}
	}
	return earned, paid, nil
}

// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only fall back to a local instance in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://localhost:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// DBName returns the configured database name.
func DBName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "daansetu"
	}
	return dbName
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DBName()).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DBName())

	collections := []string{"users", "referral_codes", "donations", "commission_logs"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	// Unique email per user
	userColl := db.Collection("users")
	emailIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := userColl.Indexes().CreateOne(ctx, emailIndexModel); err != nil {
		log.Printf("Error creating email index: %v", err)
	}
	parentIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "parentCoordinatorId", Value: 1}},
	}
	if _, err := userColl.Indexes().CreateOne(ctx, parentIndexModel); err != nil {
		log.Printf("Error creating parentCoordinatorId index: %v", err)
	}

	// Referral codes: the code itself and the owner are both unique. The
	// owner index is what makes getOrCreate race-safe.
	codeColl := db.Collection("referral_codes")
	codeIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "ownerUserId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := codeColl.Indexes().CreateMany(ctx, codeIndexes); err != nil {
		log.Printf("Error creating referral_codes indexes: %v", err)
	}

	// Donations are looked up by gateway order id on every webhook
	donationColl := db.Collection("donations")
	orderIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "gatewayOrderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := donationColl.Indexes().CreateOne(ctx, orderIndexModel); err != nil {
		log.Printf("Error creating gatewayOrderId index: %v", err)
	}

	// One commission log per (donation, beneficiary) pair; makes a retried
	// distribution unable to double-write
	logColl := db.Collection("commission_logs")
	logIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "donationId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := logColl.Indexes().CreateOne(ctx, logIndexModel); err != nil {
		log.Printf("Error creating commission_logs index: %v", err)
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/shopease/config"
)

// Mongo is the document database used when STORE_DRIVER=mongo.
var Mongo *mongo.Database

var mongoClient *mongo.Client

// ConnectMongo dials MONGO_URI and selects MONGO_DATABASE.
func ConnectMongo(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(config.MongoURI()).
		SetAppName(config.AppName()).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("database: mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background()) //nolint:errcheck
		return fmt.Errorf("database: mongo ping: %w", err)
	}

	mongoClient = client
	Mongo = client.Database(config.MongoDatabase())
	return nil
}

// PingMongo checks the MongoDB connection.
func PingMongo(ctx context.Context) error {
	if mongoClient == nil {
		return fmt.Errorf("database: mongo not connected")
	}
	return mongoClient.Ping(ctx, readpref.Primary())
}

// CloseMongo disconnects the MongoDB client, if open.
func CloseMongo(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	err := mongoClient.Disconnect(ctx)
	mongoClient, Mongo = nil, nil
	return err
}

// PingStore checks whichever backend STORE_DRIVER selects.
func PingStore(ctx context.Context) error {
	if config.StoreDriver() == "mongo" {
		return PingMongo(ctx)
	}
	return Ping(ctx)
}

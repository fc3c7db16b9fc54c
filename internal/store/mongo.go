package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const movesCollection = "moves"

// MongoArchive stores one document per ply in the "moves" collection.
type MongoArchive struct {
	client *mongo.Client
	moves  *mongo.Collection
}

func NewMongoArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(5 * time.Minute)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	a := &MongoArchive{
		client: client,
		moves:  client.Database(database).Collection(movesCollection),
	}
	go a.ensureIndexes()
	return a, nil
}

func (a *MongoArchive) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := a.moves.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "gameId", Value: 1}, {Key: "ply", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("creating index on %s: %v", movesCollection, err)
	}
}

func (a *MongoArchive) Record(ctx context.Context, rec MoveRecord) error {
	if _, err := a.moves.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("recording ply %d of game %s: %w", rec.Ply, rec.GameID, err)
	}
	return nil
}

func (a *MongoArchive) Truncate(ctx context.Context, gameID string, fromPly int) error {
	filter := bson.M{"gameId": gameID, "ply": bson.M{"$gte": fromPly}}
	if _, err := a.moves.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("truncating game %s at ply %d: %w", gameID, fromPly, err)
	}
	return nil
}

func (a *MongoArchive) Moves(ctx context.Context, gameID string) ([]MoveRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ply", Value: 1}})
	cursor, err := a.moves.Find(ctx, bson.M{"gameId": gameID}, opts)
	if err != nil {
		return nil, fmt.Errorf("loading moves of game %s: %w", gameID, err)
	}
	defer cursor.Close(ctx)

	var recs []MoveRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decoding moves of game %s: %w", gameID, err)
	}
	if len(recs) == 0 {
		return nil, ErrGameNotFound
	}
	return recs, nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

// Package audit stores the notifier's record of delivered transfer events in
// MongoDB.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simplepay/internal/services/notification"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "notification_audit"

// Document is one delivered event. The event ID is the document key, so a
// redelivered event can never be stored twice.
type Document struct {
	EventID    string    `bson:"_id"`
	TransferID string    `bson:"transfer_id"`
	PayerID    int64     `bson:"payer_id"`
	PayeeID    int64     `bson:"payee_id"`
	Amount     string    `bson:"amount"`
	NotifiedAt time.Time `bson:"notified_at"`
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(client *mongo.Client, dbName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

// Connect opens and pings a MongoDB client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func (r *Repository) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.D{{Key: "_id", Value: eventID}})
	if err != nil {
		return false, fmt.Errorf("failed to query audit log: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) Save(ctx context.Context, record notification.AuditRecord) error {
	_, err := r.collection.InsertOne(ctx, toDocument(record))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Get returns the stored document for eventID.
func (r *Repository) Get(ctx context.Context, eventID string) (*Document, error) {
	var doc Document
	err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: eventID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load audit record: %w", err)
	}
	return &doc, nil
}

func toDocument(record notification.AuditRecord) Document {
	return Document{
		EventID:    record.EventID,
		TransferID: record.TransferID,
		PayerID:    int64(record.PayerID),
		PayeeID:    int64(record.PayeeID),
		Amount:     record.Amount,
		NotifiedAt: record.NotifiedAt,
	}
}

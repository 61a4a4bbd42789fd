package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

const collectionEmergencies = "emergencies"

type EmergencyRepository struct {
	col *mongo.Collection
}

func NewEmergencyRepository(db *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{col: db.Collection(collectionEmergencies)}
}

func activeStatuses() bson.A {
	return bson.A{string(domain.EmergencyPending), string(domain.EmergencyAccepted)}
}

// Create inserts a new emergency document.
func (r *EmergencyRepository) Create(ctx context.Context, e *domain.Emergency) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, e)
	return err
}

// FindByID retrieves an emergency by its identifier.
func (r *EmergencyRepository) FindByID(ctx context.Context, id int64) (*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e domain.Emergency
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmergencyNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListActive returns pending and accepted emergencies, newest first.
func (r *EmergencyRepository) ListActive(ctx context.Context, limit int) ([]*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"status": bson.M{"$in": activeStatuses()}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*domain.Emergency, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Assign atomically moves a pending emergency to accepted. The status filter
// makes concurrent accepts race-safe: only one responder wins.
func (r *EmergencyRepository) Assign(ctx context.Context, id int64, responderID string, at time.Time) (*domain.Emergency, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(domain.EmergencyPending)}
	update := bson.M{"$set": bson.M{
		"status":       string(domain.EmergencyAccepted),
		"responder_id": responderID,
		"accepted_at":  at.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e domain.Emergency
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, countErr := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if n == 0 {
		return nil, domain.ErrEmergencyNotFound
	}
	return nil, domain.ErrAlreadyAccepted
}

// UpdateStatus moves an active emergency to a terminal status.
func (r *EmergencyRepository) UpdateStatus(ctx context.Context, id int64, status domain.EmergencyStatus, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": bson.M{"$in": activeStatuses()}}
	update := bson.M{"$set": bson.M{
		"status":      string(status),
		"resolved_at": at.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrEmergencyClosed
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the emergencies collection.
func (r *EmergencyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "victim_id", Value: 1}}},
		{Keys: bson.D{{Key: "responder_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

const collectionLocationHistory = "location_history"

// LocationHistoryRepository implements ports.LocationHistoryRepository using MongoDB.
type LocationHistoryRepository struct {
	col *mongo.Collection
}

// NewLocationHistoryRepository creates a new LocationHistoryRepository.
func NewLocationHistoryRepository(db *mongo.Database) *LocationHistoryRepository {
	return &LocationHistoryRepository{col: db.Collection(collectionLocationHistory)}
}

// Insert persists a location update to the audit collection.
func (r *LocationHistoryRepository) Insert(ctx context.Context, u *domain.LocationUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"emergency_id": u.EmergencyID,
		"party":        string(u.Party),
		"reporter":     u.Reporter,
		"location": bson.M{
			"lat": u.Coordinate.Lat,
			"lng": u.Coordinate.Lng,
		},
		"timestamp":    u.Timestamp.UTC(),
		"source":       u.Source,
		"processed_at": time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes creates the lookup index used when replaying an emergency's trail.
func (r *LocationHistoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "emergency_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}

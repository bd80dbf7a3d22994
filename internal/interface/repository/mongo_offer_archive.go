package repository

import (
	"context"
	"time"

	"faretrack-service/internal/domain/entity"
	"faretrack-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOfferArchive implements the OfferArchiveRepository interface.
// Raw offers are document-shaped and unbounded in schema, so they go
// to MongoDB instead of the relational store.
type MongoOfferArchive struct {
	collection *mongo.Collection
}

// NewMongoOfferArchive creates a new MongoDB offer archive
func NewMongoOfferArchive(db *mongo.Database) repository.OfferArchiveRepository {
	collection := db.Collection("offer_archive")

	// Create indexes for better performance
	ctx := context.Background()

	// Index on searchId for per-search replay
	searchIDIndex := mongo.IndexModel{
		Keys: bson.M{"searchId": 1},
	}

	// Index on identityKey for cross-search offer lookups
	identityIndex := mongo.IndexModel{
		Keys: bson.M{"identityKey": 1},
	}

	// Index on archivedAt for retention sweeps
	archivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"archivedAt": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		searchIDIndex,
		identityIndex,
		archivedAtIndex,
	})

	return &MongoOfferArchive{
		collection: collection,
	}
}

// archivedOffer is the document shape stored per raw offer
type archivedOffer struct {
	SearchID     uint      `bson:"searchId"`
	IdentityKey  string    `bson:"identityKey"`
	FlightNumber string    `bson:"flightNumber"`
	Region       string    `bson:"region"`
	TotalPrice   float64   `bson:"totalPrice"`
	Currency     string    `bson:"currency"`
	ExternalID   string    `bson:"externalId"`
	RawDocument  string    `bson:"rawDocument"`
	ArchivedAt   time.Time `bson:"archivedAt"`
}

// Archive stores one raw offer with the search that produced it
func (r *MongoOfferArchive) Archive(ctx context.Context, searchID uint, offer *entity.RegionOffer) error {
	doc := archivedOffer{
		SearchID:     searchID,
		IdentityKey:  offer.IdentityKey(),
		FlightNumber: offer.FlightNumber,
		Region:       offer.SourceRegion,
		TotalPrice:   offer.TotalPrice,
		Currency:     offer.Currency,
		ExternalID:   offer.ExternalID,
		RawDocument:  offer.RawDocument,
		ArchivedAt:   time.Now().UTC(),
	}

	_, err := r.collection.InsertOne(ctx, doc, options.InsertOne())
	return err
}

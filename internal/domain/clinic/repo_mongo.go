package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	snapshotCollection = "snapshots"
	currentSnapshotKey = "current"
)

type snapshotDocument struct {
	Key      string `bson:"_id"`
	Snapshot `bson:",inline"`
}

type snapshotRepoMongo struct {
	coll *mongo.Collection
}

// NewSnapshotRepoMongo keeps a single upserted snapshot document per database.
func NewSnapshotRepoMongo(db *mongo.Database) SnapshotRepository {
	return &snapshotRepoMongo{coll: db.Collection(snapshotCollection)}
}

func (r *snapshotRepoMongo) Load(ctx context.Context) (*Snapshot, error) {
	var doc snapshotDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": currentSnapshotKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &doc.Snapshot, nil
}

func (r *snapshotRepoMongo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Revision == "" {
		snap.Revision = uuid.New().String()
	}
	doc := snapshotDocument{Key: currentSnapshotKey, Snapshot: *snap}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": currentSnapshotKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

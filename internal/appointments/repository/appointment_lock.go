package repository

import (
	"context"
	"fmt"
	"time"

	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentLockRepository stores advisory locks. Expired locks are reaped
// by the TTL index on expires_at.
type AppointmentLockRepository interface {
	// Create returns a duplicate key error while another holder owns the lock.
	Create(ctx context.Context, lock *model.AppointmentLock) error
	Delete(ctx context.Context, lockID string) error
}

type mongoAppointmentLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewAppointmentLockRepository(cfg *config.Config) AppointmentLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentLockRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.AppointmentLocksCollection),
	}
}

func (r *mongoAppointmentLockRepository) Create(ctx context.Context, lock *model.AppointmentLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, lock)
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	// The TTL monitor runs about once a minute, so an expired lock may
	// still be present. Take it over.
	reaped, delErr := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": lock.CreatedAt}})
	if delErr != nil || reaped.DeletedCount == 0 {
		return err
	}
	_, err = r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoAppointmentLockRepository) Delete(ctx context.Context, lockID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release appointment lock: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleserrors "sisagenda/internal/schedules/errors"
	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OverrideFilter selects overrides of one organization. From and To are
// inclusive YYYY-MM-DD bounds; dates in that layout sort lexically.
type OverrideFilter struct {
	OrganizationID string
	DeliveryTypeID string
	From           string
	To             string
}

type OverrideRepository interface {
	Create(ctx context.Context, override *model.Override) error
	FindByID(ctx context.Context, id string) (*model.Override, error)
	Find(ctx context.Context, filter OverrideFilter, limit int, offset int64) ([]*model.Override, error)
	Count(ctx context.Context, filter OverrideFilter) (int64, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoOverrideRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoOverrideRepository(cfg *config.Config) OverrideRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOverrideRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.OverridesCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoOverrideRepository) Create(ctx context.Context, override *model.Override) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	override.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, override)
	if err != nil {
		return fmt.Errorf("failed to create override: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		override.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOverrideRepository) FindByID(ctx context.Context, id string) (*model.Override, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	var override model.Override
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&override); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find override: %w", err)
	}
	return &override, nil
}

func (r *mongoOverrideRepository) Find(ctx context.Context, filter OverrideFilter, limit int, offset int64) ([]*model.Override, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_minute", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit)).SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, buildOverrideFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []*model.Override
	if err = cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode overrides: %w", err)
	}
	return overrides, nil
}

func (r *mongoOverrideRepository) Count(ctx context.Context, filter OverrideFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildOverrideFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count overrides: %w", err)
	}
	return count, nil
}

func (r *mongoOverrideRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleserrors.ErrNotFound
	}
	return nil
}

func (r *mongoOverrideRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildOverrideFilter(f OverrideFilter) bson.M {
	filter := bson.M{"organization_id": f.OrganizationID}
	if f.DeliveryTypeID != "" {
		filter["delivery_type_id"] = f.DeliveryTypeID
	}

	date := bson.M{}
	if f.From != "" {
		date["$gte"] = f.From
	}
	if f.To != "" {
		date["$lte"] = f.To
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

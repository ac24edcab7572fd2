package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	organizationserrors "sisagenda/internal/organizations/errors"
	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeliveryTypeRepository interface {
	Create(ctx context.Context, dt *model.DeliveryType) error
	FindByID(ctx context.Context, id string) (*model.DeliveryType, error)
	FindByOrganization(ctx context.Context, organizationID string, limit int, offset int64) ([]*model.DeliveryType, error)
	CountByOrganization(ctx context.Context, organizationID string) (int64, error)
	Update(ctx context.Context, id string, dt *model.DeliveryType) error
}

type mongoDeliveryTypeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDeliveryTypeRepository(cfg *config.Config) DeliveryTypeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDeliveryTypeRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.DeliveryTypesCollection),
	}
}

func (r *mongoDeliveryTypeRepository) Create(ctx context.Context, dt *model.DeliveryType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	dt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, dt)
	if err != nil {
		return fmt.Errorf("failed to create delivery type: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		dt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoDeliveryTypeRepository) FindByID(ctx context.Context, id string) (*model.DeliveryType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", organizationserrors.ErrInvalidID, id)
	}

	var dt model.DeliveryType
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&dt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", organizationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find delivery type: %w", err)
	}
	return &dt, nil
}

func (r *mongoDeliveryTypeRepository) FindByOrganization(ctx context.Context, organizationID string, limit int, offset int64) ([]*model.DeliveryType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"organization_id": organizationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery types: %w", err)
	}
	defer cursor.Close(ctx)

	var dts []*model.DeliveryType
	if err = cursor.All(ctx, &dts); err != nil {
		return nil, fmt.Errorf("failed to decode delivery types: %w", err)
	}
	return dts, nil
}

func (r *mongoDeliveryTypeRepository) CountByOrganization(ctx context.Context, organizationID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		return 0, fmt.Errorf("failed to count delivery types: %w", err)
	}
	return count, nil
}

// Update rewrites the mutable fields. A delivery type without lunch has the
// lunch fields removed from the document.
func (r *mongoDeliveryTypeRepository) Update(ctx context.Context, id string, dt *model.DeliveryType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", organizationserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"name":             dt.Name,
		"duration_minutes": dt.DurationMinutes,
		"active":           dt.Active,
	}
	update := bson.M{"$set": set}
	if start, end, ok := dt.Lunch(); ok {
		set["lunch_start_minute"] = start
		set["lunch_end_minute"] = end
	} else {
		update["$unset"] = bson.M{"lunch_start_minute": "", "lunch_end_minute": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update delivery type: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", organizationserrors.ErrNotFound, id)
	}
	return nil
}

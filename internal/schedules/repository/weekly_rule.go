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

// RuleFilter selects active rules of one organization. A nil DeliveryTypeID
// matches every owner; a pointer to "" matches organization defaults only.
type RuleFilter struct {
	OrganizationID string
	DeliveryTypeID *string
	WeekDay        *int
}

type WeeklyRuleRepository interface {
	Create(ctx context.Context, rule *model.WeeklyRule) error
	FindByID(ctx context.Context, id string) (*model.WeeklyRule, error)
	Find(ctx context.Context, filter RuleFilter, limit int, offset int64) ([]*model.WeeklyRule, error)
	Count(ctx context.Context, filter RuleFilter) (int64, error)
	Update(ctx context.Context, id string, rule *model.WeeklyRule) error
	SoftDelete(ctx context.Context, id string) error
	// GuardWeekday bumps the guard document of one owner and weekday. Two
	// transactions guarding the same weekday conflict, so the later one
	// retries and sees the other's rule.
	GuardWeekday(ctx context.Context, organizationID, deliveryTypeID string, weekDay int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoWeeklyRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	guards     *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoWeeklyRuleRepository(cfg *config.Config) WeeklyRuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWeeklyRuleRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.WeeklyRulesCollection),
		guards:     db.Collection(mongotx.WeeklyRuleGuardsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWeeklyRuleRepository) Create(ctx context.Context, rule *model.WeeklyRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	rule.DeletedAt = nil
	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create weekly rule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWeeklyRuleRepository) FindByID(ctx context.Context, id string) (*model.WeeklyRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	var rule model.WeeklyRule
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "deleted_at": nil}).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find weekly rule: %w", err)
	}
	return &rule, nil
}

func (r *mongoWeeklyRuleRepository) Find(ctx context.Context, filter RuleFilter, limit int, offset int64) ([]*model.WeeklyRule, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "delivery_type_id", Value: 1},
		{Key: "week_day", Value: 1},
		{Key: "start_minute", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit)).SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, buildRuleFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.WeeklyRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode weekly rules: %w", err)
	}
	return rules, nil
}

func (r *mongoWeeklyRuleRepository) Count(ctx context.Context, filter RuleFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildRuleFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count weekly rules: %w", err)
	}
	return count, nil
}

func (r *mongoWeeklyRuleRepository) Update(ctx context.Context, id string, rule *model.WeeklyRule) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"week_day":     rule.WeekDay,
			"start_minute": rule.StartMinute,
			"end_minute":   rule.EndMinute,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "deleted_at": nil}, update)
	if err != nil {
		return fmt.Errorf("failed to update weekly rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleserrors.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at. Deleted rules stay for audit and are ignored
// by every read.
func (r *mongoWeeklyRuleRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"deleted_at": time.Now().UTC().Truncate(time.Millisecond)}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "deleted_at": nil}, update)
	if err != nil {
		return fmt.Errorf("failed to delete weekly rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleserrors.ErrNotFound
	}
	return nil
}

func (r *mongoWeeklyRuleRepository) GuardWeekday(ctx context.Context, organizationID, deliveryTypeID string, weekDay int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.guards.UpdateOne(ctx,
		bson.M{"_id": GuardKey(organizationID, deliveryTypeID, weekDay)},
		bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
			"$setOnInsert": bson.M{
				"organization_id":  organizationID,
				"delivery_type_id": deliveryTypeID,
				"week_day":         weekDay,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to guard weekday: %w", err)
	}
	return nil
}

// GuardKey identifies the guard document of one owner and weekday.
func GuardKey(organizationID, deliveryTypeID string, weekDay int) string {
	return fmt.Sprintf("%s:%s:%d", organizationID, deliveryTypeID, weekDay)
}

func (r *mongoWeeklyRuleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildRuleFilter(f RuleFilter) bson.M {
	filter := bson.M{
		"organization_id": f.OrganizationID,
		"deleted_at":      nil,
	}
	if f.DeliveryTypeID != nil {
		filter["delivery_type_id"] = *f.DeliveryTypeID
	}
	if f.WeekDay != nil {
		filter["week_day"] = *f.WeekDay
	}
	return filter
}

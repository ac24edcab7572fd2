package mongo

import (
	"context"
	"fmt"

	"sisagenda/internal/migrations/mongo/validators"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollectionDefinition struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	OrganizationsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "document", Value: 1}},
			Options: options.Index().
				SetName("document_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"document": bson.M{"$gt": ""}}),
		},
	}

	DeliveryTypesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "name", Value: 1}}},
	}

	WeeklyRulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "delivery_type_id", Value: 1},
			{Key: "week_day", Value: 1},
			{Key: "start_minute", Value: 1},
		}},
	}

	WeeklyRuleGuardsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
	}

	OverridesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "delivery_type_id", Value: 1},
			{Key: "date", Value: 1},
		}},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "organization_id", Value: 1},
			{Key: "delivery_type_id", Value: 1},
			{Key: "date", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
	}

	// Expired locks are reaped by Mongo; the lock repository also takes over
	// expired locks the reaper has not reached yet.
	AppointmentLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

// Collections lists every collection the services read or write.
func Collections() []CollectionDefinition {
	return []CollectionDefinition{
		{Name: mongotx.OrganizationsCollection, Indexes: OrganizationsIndexes, Validator: validators.OrganizationValidator},
		{Name: mongotx.DeliveryTypesCollection, Indexes: DeliveryTypesIndexes, Validator: validators.DeliveryTypeValidator},
		{Name: mongotx.WeeklyRulesCollection, Indexes: WeeklyRulesIndexes, Validator: validators.WeeklyRuleValidator},
		{Name: mongotx.WeeklyRuleGuardsCollection, Indexes: WeeklyRuleGuardsIndexes, Validator: validators.WeeklyRuleGuardValidator},
		{Name: mongotx.OverridesCollection, Indexes: OverridesIndexes, Validator: validators.OverrideValidator},
		{Name: mongotx.AppointmentsCollection, Indexes: AppointmentsIndexes, Validator: validators.AppointmentValidator},
		{Name: mongotx.AppointmentLocksCollection, Indexes: AppointmentLocksIndexes, Validator: validators.AppointmentLockValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully", "collections", len(Collections()))
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

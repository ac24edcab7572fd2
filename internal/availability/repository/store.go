package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sisagenda/internal/availability/engine"
	availabilityerrors "sisagenda/internal/availability/errors"
	"sisagenda/internal/availability/service"
	"sisagenda/pkg/config"
	mongodb "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoStore reads the engine inputs straight from the collections owned by
// the organizations, schedules and appointments services.
type mongoStore struct {
	cfg           *config.Config
	organizations *mongo.Collection
	deliveryTypes *mongo.Collection
	weeklyRules   *mongo.Collection
	overrides     *mongo.Collection
	appointments  *mongo.Collection
}

func NewMongoStore(cfg *config.Config) service.Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		cfg:           cfg,
		organizations: db.Collection(mongodb.OrganizationsCollection),
		deliveryTypes: db.Collection(mongodb.DeliveryTypesCollection),
		weeklyRules:   db.Collection(mongodb.WeeklyRulesCollection),
		overrides:     db.Collection(mongodb.OverridesCollection),
		appointments:  db.Collection(mongodb.AppointmentsCollection),
	}
}

func (s *mongoStore) LoadOrganization(ctx context.Context, organizationID string) (*model.Organization, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, organizationID)
	}

	var org model.Organization
	err = s.organizations.FindOne(ctx, bson.M{"_id": objectID, "active": true}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &engine.NotFoundError{Resource: "Organization", ID: organizationID}
		}
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}
	return &org, nil
}

func (s *mongoStore) LoadSlotDuration(ctx context.Context, organizationID, deliveryTypeID string) (int, error) {
	dt, err := s.loadDeliveryType(ctx, organizationID, deliveryTypeID)
	if err != nil {
		return 0, err
	}
	return dt.DurationMinutes, nil
}

func (s *mongoStore) LoadLunchExclusion(ctx context.Context, organizationID, deliveryTypeID string) (*engine.Interval, error) {
	dt, err := s.loadDeliveryType(ctx, organizationID, deliveryTypeID)
	if err != nil {
		return nil, err
	}
	start, end, ok := dt.Lunch()
	if !ok {
		return nil, nil
	}
	return &engine.Interval{Start: start, End: end}, nil
}

func (s *mongoStore) loadDeliveryType(ctx context.Context, organizationID, deliveryTypeID string) (*model.DeliveryType, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(deliveryTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, deliveryTypeID)
	}

	filter := bson.M{"_id": objectID, "organization_id": organizationID, "active": true}
	var dt model.DeliveryType
	if err := s.deliveryTypes.FindOne(ctx, filter).Decode(&dt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &engine.NotFoundError{Resource: "Delivery type", ID: deliveryTypeID}
		}
		return nil, fmt.Errorf("failed to load delivery type: %w", err)
	}
	return &dt, nil
}

// LoadWeeklyRules returns the delivery type's rules for weekday. A delivery
// type with no active rules on any weekday inherits the organization
// defaults, stored with an empty delivery_type_id.
func (s *mongoStore) LoadWeeklyRules(ctx context.Context, organizationID, deliveryTypeID string, weekday time.Weekday) ([]*model.WeeklyRule, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	own, err := s.weeklyRules.CountDocuments(ctx, bson.M{
		"organization_id":  organizationID,
		"delivery_type_id": deliveryTypeID,
		"deleted_at":       nil,
	}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to count weekly rules: %w", err)
	}

	filter := weeklyRulesFilter(organizationID, ruleOwner(deliveryTypeID, own), weekday)
	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})

	cursor, err := s.weeklyRules.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find weekly rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.WeeklyRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode weekly rules: %w", err)
	}
	return rules, nil
}

func (s *mongoStore) LoadOverrides(ctx context.Context, organizationID, deliveryTypeID, date string) ([]*model.Override, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id":  organizationID,
		"delivery_type_id": deliveryTypeID,
		"date":             date,
	}
	cursor, err := s.overrides.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overrides: %w", err)
	}
	defer cursor.Close(ctx)

	var overrides []*model.Override
	if err := cursor.All(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode overrides: %w", err)
	}
	return overrides, nil
}

// LoadActiveAppointments returns non-cancelled appointments starting in
// [from, to). Callers pass from one day early so appointments crossing
// midnight are included.
func (s *mongoStore) LoadActiveAppointments(ctx context.Context, organizationID, deliveryTypeID string, from, to time.Time) ([]*model.Appointment, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"organization_id":  organizationID,
		"delivery_type_id": deliveryTypeID,
		"status":           bson.M{"$ne": model.StatusCancelled},
		"date":             bson.M{"$gte": from, "$lt": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := s.appointments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

// ruleOwner picks whose weekly rules apply to a delivery type: its own when
// it has any active rule on any weekday, otherwise the organization
// defaults stored under an empty delivery_type_id.
func ruleOwner(deliveryTypeID string, ownRules int64) string {
	if ownRules == 0 {
		return ""
	}
	return deliveryTypeID
}

func weeklyRulesFilter(organizationID, owner string, weekday time.Weekday) bson.M {
	return bson.M{
		"organization_id":  organizationID,
		"delivery_type_id": owner,
		"week_day":         int(weekday),
		"deleted_at":       nil,
	}
}

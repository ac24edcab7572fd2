package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "sisagenda/internal/appointments/errors"
	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SearchFilter selects appointments of one organization. Empty fields are
// not filtered on; From and To bound the appointment start.
type SearchFilter struct {
	OrganizationID string
	DeliveryTypeID string
	Status         model.AppointmentStatus
	From           *time.Time
	To             *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	// Update persists appointment only if its stored status still equals
	// expected, returning ErrStatusChanged otherwise.
	Update(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error
	Search(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.AppointmentsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var appointment model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(appointment.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, appointment.ID)
	}

	appointment.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"date":             appointment.Date,
		"duration_minutes": appointment.DurationMinutes,
		"status":           appointment.Status,
		"updated_at":       appointment.UpdatedAt,
	}
	if appointment.CancellationReason != "" {
		set["cancellation_reason"] = appointment.CancellationReason
	}
	update := bson.M{"$set": set}
	if appointment.RequestedDate != nil {
		set["requested_date"] = *appointment.RequestedDate
	} else {
		update["$unset"] = bson.M{"requested_date": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": expected}, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appointmentserrors.ErrStatusChanged
	}
	return nil
}

func (r *mongoAppointmentRepository) Search(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func buildSearchFilter(f SearchFilter) bson.M {
	filter := bson.M{"organization_id": f.OrganizationID}
	if f.DeliveryTypeID != "" {
		filter["delivery_type_id"] = f.DeliveryTypeID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	date := bson.M{}
	if f.From != nil {
		date["$gte"] = *f.From
	}
	if f.To != nil {
		date["$lt"] = *f.To
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

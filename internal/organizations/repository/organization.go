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

type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	FindByID(ctx context.Context, id string) (*model.Organization, error)
	FindByDocument(ctx context.Context, document string) (*model.Organization, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, org *model.Organization) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoOrganizationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoOrganizationRepository(cfg *config.Config) OrganizationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOrganizationRepository{
		cfg:        cfg,
		collection: db.Collection(mongotx.OrganizationsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoOrganizationRepository) Create(ctx context.Context, org *model.Organization) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	org.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, org)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		org.ID = oid.Hex()
	}
	return nil
}

func (r *mongoOrganizationRepository) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", organizationserrors.ErrInvalidID, id)
	}

	var org model.Organization
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", organizationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return &org, nil
}

// FindByDocument returns nil without error when no organization carries the
// document.
func (r *mongoOrganizationRepository) FindByDocument(ctx context.Context, document string) (*model.Organization, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var org model.Organization
	if err := r.collection.FindOne(ctx, bson.M{"document": document}).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find organization by document: %w", err)
	}
	return &org, nil
}

func (r *mongoOrganizationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer cursor.Close(ctx)

	var orgs []*model.Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return orgs, nil
}

func (r *mongoOrganizationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}
	return count, nil
}

func (r *mongoOrganizationRepository) Update(ctx context.Context, id string, org *model.Organization) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", organizationserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":          org.Name,
			"document":      org.Document,
			"contact_phone": org.ContactPhone,
			"active":        org.Active,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", organizationserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoOrganizationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

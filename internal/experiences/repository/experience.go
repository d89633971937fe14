package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	experienceserrors "experia/internal/experiences/errors"
	"experia/pkg/config"
	mongotx "experia/pkg/db/mongo"
	"experia/pkg/model"
	"experia/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Experiences"
)

type mongoExperienceRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ExperienceRepository interface {
	Create(ctx context.Context, exp *model.Experience) error
	FindByID(ctx context.Context, id string) (*model.Experience, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Experience, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error)
	Count(ctx context.Context) (int64, error)
	CountSearch(ctx context.Context, query string) (int64, error)

	MaterializeSlot(ctx context.Context, id, date, timeSlot string, capacity int) error
	IncrementSlotBooked(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoExperienceRepository(cfg *config.Config) ExperienceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoExperienceRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoExperienceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoExperienceRepository) Create(ctx context.Context, exp *model.Experience) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	exp.CreatedAt = now
	exp.UpdatedAt = now
	if exp.Slots == nil {
		exp.Slots = []model.Slot{}
	}

	result, err := r.collection.InsertOne(ctx, exp)
	if err != nil {
		return fmt.Errorf("failed to create experience: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		exp.ID = oid.Hex()
	}

	return nil
}

func (r *mongoExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", experienceserrors.ErrInvalidID, id)
	}
	filter := bson.M{"_id": objectID}

	var exp model.Experience
	err = r.collection.FindOne(ctx, filter).Decode(&exp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", experienceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find experience: %w", err)
	}
	return &exp, nil
}

func (r *mongoExperienceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query experiences: %w", err)
	}
	defer cursor.Close(ctx)

	var experiences []*model.Experience
	if err = cursor.All(ctx, &experiences); err != nil {
		return nil, fmt.Errorf("failed to decode experiences: %w", err)
	}

	return experiences, nil
}

func (r *mongoExperienceRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, searchFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search experiences for [%s]: %w", query, err)
	}
	defer cursor.Close(ctx)

	var experiences []*model.Experience
	if err := cursor.All(ctx, &experiences); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	return experiences, nil
}

func (r *mongoExperienceRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count experiences: %w", err)
	}
	return count, nil
}

func (r *mongoExperienceRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, searchFilter(query))
	if err != nil {
		return 0, fmt.Errorf("failed to count experiences for [%s]: %w", query, err)
	}
	return count, nil
}

func searchFilter(query string) bson.M {
	pattern := sanitizer.EscapeRegex(query)
	return bson.M{
		"$or": []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"location": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		},
	}
}

// MaterializeSlot pushes a fresh slot document for the (date, time) pair.
// The filter requires the slot to be absent, so two concurrent
// materializations cannot both succeed; the loser gets ErrSlotConflict
// and must re-read the experience.
func (r *mongoExperienceRepository) MaterializeSlot(ctx context.Context, id, date, timeSlot string, capacity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", experienceserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id": objectID,
		"slots": bson.M{
			"$not": bson.M{
				"$elemMatch": bson.M{"date": date, "time": timeSlot},
			},
		},
	}
	update := bson.M{
		"$push": bson.M{
			"slots": model.Slot{
				Date:     date,
				Time:     timeSlot,
				Booked:   0,
				Capacity: capacity,
			},
		},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to materialize slot [%s %s]: %w", date, timeSlot, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", experienceserrors.ErrSlotConflict, date, timeSlot)
	}

	return nil
}

// IncrementSlotBooked adds quantity to the slot's booked counter. The
// filter pins booked to the value observed when capacity was checked,
// so a concurrent increment makes this update match nothing instead of
// overselling the slot.
func (r *mongoExperienceRepository) IncrementSlotBooked(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", experienceserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id": objectID,
		"slots": bson.M{
			"$elemMatch": bson.M{
				"date":   date,
				"time":   timeSlot,
				"booked": prevBooked,
			},
		},
	}
	update := bson.M{
		"$inc": bson.M{"slots.$.booked": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment slot [%s %s]: %w", date, timeSlot, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", experienceserrors.ErrSlotConflict, date, timeSlot)
	}

	return nil
}

func (r *mongoExperienceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	workhourserrors "slotbook/internal/workhours/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Working_intervals"

type WorkingIntervalRepository interface {
	Create(ctx context.Context, interval *model.WorkingInterval) error
	FindByID(ctx context.Context, id string) (*model.WorkingInterval, error)
	FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error)
	ListByWorker(ctx context.Context, workerID, startDate, endDate string) ([]*model.WorkingInterval, error)
	CountByWorker(ctx context.Context, workerID string) (int64, error)
	Update(ctx context.Context, id, startTime, endTime string) error
	Delete(ctx context.Context, id string) error
	BatchInsertIfAbsent(ctx context.Context, workerID string, dates []string, startTime, endTime string) ([]string, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoWorkingIntervalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoWorkingIntervalRepository(cfg *config.Config) WorkingIntervalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWorkingIntervalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWorkingIntervalRepository) Create(ctx context.Context, interval *model.WorkingInterval) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	interval.ID = ""
	if interval.CreatedAt.IsZero() {
		interval.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, interval)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return workhourserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert working interval: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		interval.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWorkingIntervalRepository) FindByID(ctx context.Context, id string) (*model.WorkingInterval, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", workhourserrors.ErrInvalidID, id)
	}

	var interval model.WorkingInterval
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&interval); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workhourserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find working interval: %w", err)
	}
	return &interval, nil
}

func (r *mongoWorkingIntervalRepository) FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var interval model.WorkingInterval
	err := r.collection.FindOne(ctx, bson.M{"worker_id": workerID, "date": date}).Decode(&interval)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, workhourserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find working interval: %w", err)
	}
	return &interval, nil
}

// ListByWorker returns intervals in ascending date order. Empty bounds are open.
func (r *mongoWorkingIntervalRepository) ListByWorker(ctx context.Context, workerID, startDate, endDate string) ([]*model.WorkingInterval, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"worker_id": workerID}
	dateRange := bson.M{}
	if startDate != "" {
		dateRange["$gte"] = startDate
	}
	if endDate != "" {
		dateRange["$lte"] = endDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list working intervals: %w", err)
	}
	defer cursor.Close(ctx)

	intervals := []*model.WorkingInterval{}
	if err = cursor.All(ctx, &intervals); err != nil {
		return nil, fmt.Errorf("failed to decode working intervals: %w", err)
	}
	return intervals, nil
}

func (r *mongoWorkingIntervalRepository) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"worker_id": workerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count working intervals: %w", err)
	}
	return count, nil
}

func (r *mongoWorkingIntervalRepository) Update(ctx context.Context, id, startTime, endTime string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workhourserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"start_time": startTime, "end_time": endTime}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update working interval: %w", err)
	}
	if result.MatchedCount == 0 {
		return workhourserrors.ErrNotFound
	}
	return nil
}

func (r *mongoWorkingIntervalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", workhourserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete working interval: %w", err)
	}
	if result.DeletedCount == 0 {
		return workhourserrors.ErrNotFound
	}
	return nil
}

// BatchInsertIfAbsent upserts one interval per date with $setOnInsert, so
// dates that already have an interval are left untouched. It returns the
// dates that were inserted, in input order.
func (r *mongoWorkingIntervalRepository) BatchInsertIfAbsent(ctx context.Context, workerID string, dates []string, startTime, endTime string) ([]string, error) {
	if len(dates) == 0 {
		return []string{}, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(dates))
	for _, date := range dates {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"worker_id": workerID, "date": date}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"worker_id":  workerID,
				"date":       date,
				"start_time": startTime,
				"end_time":   endTime,
				"created_at": now,
			}}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to batch insert working intervals: %w", err)
	}

	indexes := make([]int, 0, len(result.UpsertedIDs))
	for idx := range result.UpsertedIDs {
		indexes = append(indexes, int(idx))
	}
	slices.Sort(indexes)

	created := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		created = append(created, dates[idx])
	}
	return created, nil
}

func (r *mongoWorkingIntervalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

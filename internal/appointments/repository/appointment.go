package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "slotbook/internal/appointments/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Appointments"

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindActiveAt(ctx context.Context, workerID, serviceID string, at time.Time) (*model.Appointment, error)
	FindActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error)
	FindByWorker(ctx context.Context, workerID string, limit int, offset int64) ([]*model.Appointment, error)
	CountByWorker(ctx context.Context, workerID string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error
	UpdateDateTime(ctx context.Context, id string, at time.Time) error
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
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func activeFilter() bson.M {
	return bson.M{"$ne": model.StatusCanceled}
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.ID = ""
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appointmentserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
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
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appointment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appointment, nil
}

// FindActiveAt returns the non-canceled appointment starting exactly at,
// or ErrNotFound.
func (r *mongoAppointmentRepository) FindActiveAt(ctx context.Context, workerID, serviceID string, at time.Time) (*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"worker_id":  workerID,
		"service_id": serviceID,
		"datetime":   at,
		"status":     activeFilter(),
	}

	var appointment model.Appointment
	if err := r.collection.FindOne(ctx, filter).Decode(&appointment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appointment, nil
}

// FindActiveTimes returns the start times of non-canceled appointments on date.
func (r *mongoAppointmentRepository) FindActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	filter := bson.M{
		"worker_id":  workerID,
		"service_id": serviceID,
		"datetime":   bson.M{"$gte": dayStart, "$lt": dayStart.AddDate(0, 0, 1)},
		"status":     activeFilter(),
	}
	opts := options.Find().
		SetProjection(bson.M{"datetime": 1}).
		SetSort(bson.D{{Key: "datetime", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		DateTime time.Time `bson:"datetime"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.DateTime.UTC())
	}
	return times, nil
}

func (r *mongoAppointmentRepository) FindByWorker(ctx context.Context, workerID string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "datetime", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"worker_id": workerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := []*model.Appointment{}
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"worker_id": workerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	return r.update(ctx, id, bson.M{"status": status})
}

// UpdateDateTime moves the appointment and reopens it as Waiting.
func (r *mongoAppointmentRepository) UpdateDateTime(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, bson.M{"datetime": at, "status": model.StatusWaiting})
}

func (r *mongoAppointmentRepository) update(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appointmentserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

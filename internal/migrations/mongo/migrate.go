package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentsrepo "slotbook/internal/appointments/repository"
	catalogrepo "slotbook/internal/catalog/repository"
	"slotbook/internal/migrations/mongo/validators"
	workhoursrepo "slotbook/internal/workhours/repository"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// ActiveAppointmentFilter selects appointments that occupy their slot.
// "Canceled" sorts before every other status, and partial indexes do not
// accept $ne.
var ActiveAppointmentFilter = bson.M{"status": bson.M{"$gt": string(model.StatusCanceled)}}

var (
	WorkersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "position_id", Value: 1}}},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "branch_id", Value: 1}}},
	}

	BranchesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_id", Value: 1}}},
	}

	PositionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "branch_id", Value: 1}, {Key: "name", Value: 1}}},
	}

	ServiceCostsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "position_id", Value: 1}, {Key: "service_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "service_id", Value: 1}}},
	}

	WorkingIntervalsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "worker_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_worker_date"),
		},
	}

	AppointmentsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "worker_id", Value: 1},
				{Key: "service_id", Value: 1},
				{Key: "datetime", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_active_slot").
				SetPartialFilterExpression(ActiveAppointmentFilter),
		},
		{Keys: bson.D{{Key: "worker_id", Value: 1}, {Key: "datetime", Value: 1}}},
	}

	BookingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the service owns, in creation order.
func Collections() []CollectionDef {
	return []CollectionDef{
		{Name: catalogrepo.BranchesCollection, Indexes: BranchesIndexes, Validator: validators.BranchValidator},
		{Name: catalogrepo.PositionsCollection, Indexes: PositionsIndexes, Validator: validators.PositionValidator},
		{Name: catalogrepo.WorkersCollection, Indexes: WorkersIndexes, Validator: validators.WorkerValidator},
		{Name: catalogrepo.ServicesCollection, Indexes: ServicesIndexes, Validator: validators.ServiceValidator},
		{Name: catalogrepo.ServiceCostsCollection, Indexes: ServiceCostsIndexes, Validator: validators.ServiceCostValidator},
		{Name: workhoursrepo.CollectionName, Indexes: WorkingIntervalsIndexes, Validator: validators.WorkingIntervalValidator},
		{Name: appointmentsrepo.CollectionName, Indexes: AppointmentsIndexes, Validator: validators.AppointmentValidator},
		{Name: appointmentsrepo.LockCollectionName, Indexes: BookingLocksIndexes},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	log.Debug("Collection already exists, updating validator", "collection", name)
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

package repository

import (
	"context"
	"errors"
	"fmt"

	catalogerrors "slotbook/internal/catalog/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WorkersCollection      = "Workers"
	ServicesCollection     = "Services"
	BranchesCollection     = "Branches"
	ServiceCostsCollection = "Service_costs"
	PositionsCollection    = "Positions"
)

// CatalogRepository reads the records appointments and working hours refer to.
type CatalogRepository interface {
	FindWorker(ctx context.Context, id string) (*model.Worker, error)
	FindService(ctx context.Context, id string) (*model.Service, error)
	FindBranch(ctx context.Context, id string) (*model.Branch, error)
	FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error)
	FindServiceCostsByService(ctx context.Context, serviceID string) ([]*model.ServiceCost, error)
	FindServiceCostsByPosition(ctx context.Context, positionID string) ([]*model.ServiceCost, error)
	FindServiceCostsByPositions(ctx context.Context, positionIDs []string) ([]*model.ServiceCost, error)
	FindPositionsByBranch(ctx context.Context, branchID string) ([]*model.Position, error)
	FindServicesByIDs(ctx context.Context, ids []string) ([]*model.Service, error)
	FindWorkersByBranch(ctx context.Context, branchID string, positionIDs []string) ([]*model.Worker, error)
	DeleteWorker(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCatalogRepository struct {
	cfg          *config.Config
	workers      *mongo.Collection
	services     *mongo.Collection
	branches     *mongo.Collection
	serviceCosts *mongo.Collection
	positions    *mongo.Collection
	txManager    mongotx.TransactionManager
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:          cfg,
		workers:      db.Collection(WorkersCollection),
		services:     db.Collection(ServicesCollection),
		branches:     db.Collection(BranchesCollection),
		serviceCosts: db.Collection(ServiceCostsCollection),
		positions:    db.Collection(PositionsCollection),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCatalogRepository) FindWorker(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	if err := r.findByID(ctx, r.workers, id, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *mongoCatalogRepository) FindService(ctx context.Context, id string) (*model.Service, error) {
	var service model.Service
	if err := r.findByID(ctx, r.services, id, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *mongoCatalogRepository) FindBranch(ctx context.Context, id string) (*model.Branch, error) {
	var branch model.Branch
	if err := r.findByID(ctx, r.branches, id, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *mongoCatalogRepository) FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"position_id": positionID, "service_id": serviceID}

	var cost model.ServiceCost
	if err := r.serviceCosts.FindOne(ctx, filter).Decode(&cost); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service cost: %w", err)
	}
	return &cost, nil
}

func (r *mongoCatalogRepository) FindServiceCostsByService(ctx context.Context, serviceID string) ([]*model.ServiceCost, error) {
	return r.findServiceCosts(ctx, bson.M{"service_id": serviceID})
}

func (r *mongoCatalogRepository) FindServiceCostsByPosition(ctx context.Context, positionID string) ([]*model.ServiceCost, error) {
	return r.findServiceCosts(ctx, bson.M{"position_id": positionID})
}

func (r *mongoCatalogRepository) FindServiceCostsByPositions(ctx context.Context, positionIDs []string) ([]*model.ServiceCost, error) {
	if len(positionIDs) == 0 {
		return []*model.ServiceCost{}, nil
	}
	return r.findServiceCosts(ctx, bson.M{"position_id": bson.M{"$in": positionIDs}})
}

func (r *mongoCatalogRepository) FindPositionsByBranch(ctx context.Context, branchID string) ([]*model.Position, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.positions.Find(ctx, bson.M{"branch_id": branchID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find positions: %w", err)
	}
	defer cursor.Close(ctx)

	var positions []*model.Position
	if err = cursor.All(ctx, &positions); err != nil {
		return nil, fmt.Errorf("failed to decode positions: %w", err)
	}
	return positions, nil
}

func (r *mongoCatalogRepository) findServiceCosts(ctx context.Context, filter bson.M) ([]*model.ServiceCost, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.serviceCosts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find service costs: %w", err)
	}
	defer cursor.Close(ctx)

	var costs []*model.ServiceCost
	if err = cursor.All(ctx, &costs); err != nil {
		return nil, fmt.Errorf("failed to decode service costs: %w", err)
	}
	return costs, nil
}

// FindServicesByIDs skips ids that are not valid ObjectIDs.
func (r *mongoCatalogRepository) FindServicesByIDs(ctx context.Context, ids []string) ([]*model.Service, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return []*model.Service{}, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.services.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

// FindWorkersByBranch lists a branch's workers. A nil positionIDs means any
// position; an empty non-nil slice matches nobody.
func (r *mongoCatalogRepository) FindWorkersByBranch(ctx context.Context, branchID string, positionIDs []string) ([]*model.Worker, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"branch_id": branchID}
	if positionIDs != nil {
		filter["position_id"] = bson.M{"$in": positionIDs}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.workers.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find workers: %w", err)
	}
	defer cursor.Close(ctx)

	var workers []*model.Worker
	if err = cursor.All(ctx, &workers); err != nil {
		return nil, fmt.Errorf("failed to decode workers: %w", err)
	}
	return workers, nil
}

func (r *mongoCatalogRepository) DeleteWorker(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.workers.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete worker: %w", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.ErrNotFound
	}
	return nil
}

func (r *mongoCatalogRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoCatalogRepository) findByID(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	if err := coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalogerrors.ErrNotFound
		}
		return fmt.Errorf("failed to find %s: %w", coll.Name(), err)
	}
	return nil
}

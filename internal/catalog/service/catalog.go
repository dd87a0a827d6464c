package service

import (
	"context"
	"errors"

	catalogerrors "slotbook/internal/catalog/errors"
	"slotbook/internal/catalog/repository"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

// CatalogService resolves the workers, services and branches other
// components reference. Lookups of missing or malformed ids return NotFound.
type CatalogService interface {
	FindWorker(ctx context.Context, id string) (*model.Worker, error)
	FindService(ctx context.Context, id string) (*model.Service, error)
	FindBranch(ctx context.Context, id string) (*model.Branch, error)
	FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error)
	WorkersForService(ctx context.Context, branchID, serviceID string, positionID *string) ([]*model.Worker, error)
	ServicesForWorker(ctx context.Context, workerID string) ([]*model.WorkerService, error)
	WorkersByBranch(ctx context.Context, branchID string) ([]*model.Worker, error)
	ServicesByPosition(ctx context.Context, branchID string) ([]*model.PositionServices, error)
	DeleteWorker(ctx context.Context, workerID string) error
}

// IntervalCounter reports how many working intervals a worker has.
type IntervalCounter interface {
	CountByWorker(ctx context.Context, workerID string) (int64, error)
}

type catalogService struct {
	repo      repository.CatalogRepository
	intervals IntervalCounter
	cfg       *config.Config
}

func NewCatalogService(repo repository.CatalogRepository, intervals IntervalCounter, cfg *config.Config) CatalogService {
	return &catalogService{
		repo:      repo,
		intervals: intervals,
		cfg:       cfg,
	}
}

func (s *catalogService) FindWorker(ctx context.Context, id string) (*model.Worker, error) {
	worker, err := s.repo.FindWorker(ctx, id)
	if err != nil {
		return nil, s.lookupError("Worker", id, err)
	}
	return worker, nil
}

func (s *catalogService) FindService(ctx context.Context, id string) (*model.Service, error) {
	service, err := s.repo.FindService(ctx, id)
	if err != nil {
		return nil, s.lookupError("Service", id, err)
	}
	return service, nil
}

func (s *catalogService) FindBranch(ctx context.Context, id string) (*model.Branch, error) {
	branch, err := s.repo.FindBranch(ctx, id)
	if err != nil {
		return nil, s.lookupError("Branch", id, err)
	}
	return branch, nil
}

// FindServiceCost returns nil without error when the position does not price
// the service.
func (s *catalogService) FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error) {
	cost, err := s.repo.FindServiceCost(ctx, positionID, serviceID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to find service cost", "position_id", positionID, "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service cost", err)
	}
	return cost, nil
}

func (s *catalogService) WorkersForService(ctx context.Context, branchID, serviceID string, positionID *string) ([]*model.Worker, error) {
	if _, err := s.FindBranch(ctx, branchID); err != nil {
		return nil, err
	}

	var positions []string
	if positionID != nil && *positionID != "" {
		positions = []string{*positionID}
	} else {
		costs, err := s.repo.FindServiceCostsByService(ctx, serviceID)
		if err != nil {
			s.cfg.Log.Error("Failed to find service costs", "service_id", serviceID, "error", err)
			return nil, apperrors.Internal("Failed to retrieve workers", err)
		}
		positions = make([]string, 0, len(costs))
		for _, cost := range costs {
			positions = append(positions, cost.PositionID)
		}
	}

	workers, err := s.repo.FindWorkersByBranch(ctx, branchID, positions)
	if err != nil {
		s.cfg.Log.Error("Failed to find workers", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve workers", err)
	}
	if workers == nil {
		workers = []*model.Worker{}
	}
	return workers, nil
}

func (s *catalogService) ServicesForWorker(ctx context.Context, workerID string) ([]*model.WorkerService, error) {
	worker, err := s.FindWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	costs, err := s.repo.FindServiceCostsByPosition(ctx, worker.PositionID)
	if err != nil {
		s.cfg.Log.Error("Failed to find service costs", "position_id", worker.PositionID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	prices := make(map[string]float64, len(costs))
	ids := make([]string, 0, len(costs))
	for _, cost := range costs {
		if _, seen := prices[cost.ServiceID]; !seen {
			ids = append(ids, cost.ServiceID)
		}
		prices[cost.ServiceID] = cost.Price
	}

	services, err := s.repo.FindServicesByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to find services", "worker_id", workerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	result := make([]*model.WorkerService, 0, len(services))
	for _, service := range services {
		result = append(result, &model.WorkerService{
			ServiceID:       service.ID,
			Name:            service.Name,
			DurationMinutes: service.DurationMinutes,
			Price:           prices[service.ID],
		})
	}
	return result, nil
}

func (s *catalogService) WorkersByBranch(ctx context.Context, branchID string) ([]*model.Worker, error) {
	if _, err := s.FindBranch(ctx, branchID); err != nil {
		return nil, err
	}

	workers, err := s.repo.FindWorkersByBranch(ctx, branchID, nil)
	if err != nil {
		s.cfg.Log.Error("Failed to find workers", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve workers", err)
	}
	if workers == nil {
		workers = []*model.Worker{}
	}
	return workers, nil
}

// ServicesByPosition groups the services priced in a branch by position.
// Every position of the branch is listed, including those with no services.
func (s *catalogService) ServicesByPosition(ctx context.Context, branchID string) ([]*model.PositionServices, error) {
	if _, err := s.FindBranch(ctx, branchID); err != nil {
		return nil, err
	}

	positions, err := s.repo.FindPositionsByBranch(ctx, branchID)
	if err != nil {
		s.cfg.Log.Error("Failed to find positions", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve positions", err)
	}

	positionIDs := make([]string, 0, len(positions))
	for _, position := range positions {
		positionIDs = append(positionIDs, position.ID)
	}

	costs, err := s.repo.FindServiceCostsByPositions(ctx, positionIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to find service costs", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	prices := make(map[string]map[string]float64, len(positions))
	seen := make(map[string]bool, len(costs))
	serviceIDs := make([]string, 0, len(costs))
	for _, cost := range costs {
		if prices[cost.PositionID] == nil {
			prices[cost.PositionID] = map[string]float64{}
		}
		prices[cost.PositionID][cost.ServiceID] = cost.Price
		if !seen[cost.ServiceID] {
			seen[cost.ServiceID] = true
			serviceIDs = append(serviceIDs, cost.ServiceID)
		}
	}

	services, err := s.repo.FindServicesByIDs(ctx, serviceIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to find services", "branch_id", branchID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}

	result := make([]*model.PositionServices, 0, len(positions))
	for _, position := range positions {
		group := &model.PositionServices{
			PositionID:   position.ID,
			PositionName: position.Name,
			Services:     []*model.WorkerService{},
		}
		for _, service := range services {
			price, ok := prices[position.ID][service.ID]
			if !ok {
				continue
			}
			group.Services = append(group.Services, &model.WorkerService{
				ServiceID:       service.ID,
				Name:            service.Name,
				DurationMinutes: service.DurationMinutes,
				Price:           price,
			})
		}
		result = append(result, group)
	}
	return result, nil
}

// DeleteWorker refuses while the worker still has working intervals.
func (s *catalogService) DeleteWorker(ctx context.Context, workerID string) error {
	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		count, err := s.intervals.CountByWorker(ctx, workerID)
		if err != nil {
			return apperrors.Internal("Failed to count working intervals", err)
		}
		if count > 0 {
			return apperrors.Conflict("Worker has working intervals and cannot be deleted").
				WithDetails(map[string]any{"worker_id": workerID, "working_intervals": count})
		}

		if err := s.repo.DeleteWorker(ctx, workerID); err != nil {
			return s.lookupError("Worker", workerID, err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) || !apperrors.IsAppError(err) {
			s.cfg.Log.Error("Failed to delete worker", "worker_id", workerID, "error", err)
			return apperrors.AsAppError(err)
		}
		s.cfg.Log.Warn("Worker deletion rejected", "worker_id", workerID, "error", err)
		return err
	}

	s.cfg.Log.Info("Worker deleted successfully", "worker_id", workerID)
	return nil
}

func (s *catalogService) lookupError(resource, id string, err error) error {
	if errors.Is(err, catalogerrors.ErrNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
		return apperrors.NotFoundWithID(resource, id)
	}
	s.cfg.Log.Error("Failed to find "+resource, "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve "+resource, err)
}

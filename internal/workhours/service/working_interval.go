package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	workhourserrors "slotbook/internal/workhours/errors"
	"slotbook/internal/workhours/repository"
	"slotbook/internal/workhours/validator"
	"slotbook/pkg/calendar"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type WorkingIntervalService interface {
	Create(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error)
	Update(ctx context.Context, id string, upd *model.WorkingIntervalUpdate) (*model.WorkingInterval, error)
	Delete(ctx context.Context, id string) error
	ListByWorker(ctx context.Context, workerID string, startDate, endDate *string) ([]*model.WorkingInterval, error)
	CreateBatch(ctx context.Context, workerID string, req *model.BatchWorkingIntervalsRequest) (*model.BatchWorkingIntervalsResult, error)
	FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error)
	CountByWorker(ctx context.Context, workerID string) (int64, error)
}

// WorkerFinder resolves a worker id, returning NotFound for unknown workers.
type WorkerFinder interface {
	FindWorker(ctx context.Context, id string) (*model.Worker, error)
}

type workingIntervalService struct {
	repo      repository.WorkingIntervalRepository
	workers   WorkerFinder
	validator *validator.WorkingIntervalValidator
	cfg       *config.Config
}

func NewWorkingIntervalService(
	repo repository.WorkingIntervalRepository,
	workers WorkerFinder,
	validator *validator.WorkingIntervalValidator,
	cfg *config.Config,
) WorkingIntervalService {
	return &workingIntervalService{
		repo:      repo,
		workers:   workers,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *workingIntervalService) Create(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error) {
	if _, err := s.workers.FindWorker(ctx, workerID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Working interval validation failed", "worker_id", workerID, "error", err)
		return nil, validationError(err)
	}

	interval := &model.WorkingInterval{
		WorkerID:  workerID,
		Date:      req.Date,
		StartTime: normalizeTime(req.StartTime),
		EndTime:   normalizeTime(req.EndTime),
		CreatedAt: time.Now().UTC(),
	}

	err := s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByWorkerAndDate(ctx, workerID, interval.Date)
		if err != nil && !errors.Is(err, workhourserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check existing working interval", err)
		}
		if existing != nil {
			return duplicateError(workerID, interval.Date)
		}

		if err := s.repo.Create(ctx, interval); err != nil {
			if errors.Is(err, workhourserrors.ErrDuplicate) {
				return duplicateError(workerID, interval.Date)
			}
			return apperrors.Internal("Failed to create working interval", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create working interval", err, "worker_id", workerID, "date", interval.Date)
		return nil, err
	}

	s.cfg.Log.Info("Working interval created successfully",
		"id", interval.ID,
		"worker_id", workerID,
		"date", interval.Date,
	)
	return interval, nil
}

func (s *workingIntervalService) Update(ctx context.Context, id string, upd *model.WorkingIntervalUpdate) (*model.WorkingInterval, error) {
	if err := s.validator.ValidateUpdate(upd); err != nil {
		s.cfg.Log.Warn("Working interval update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}

	merged := *existing
	if upd.StartTime != nil {
		merged.StartTime = normalizeTime(*upd.StartTime)
	}
	if upd.EndTime != nil {
		merged.EndTime = normalizeTime(*upd.EndTime)
	}
	if err := validator.ValidateRange(merged.StartTime, merged.EndTime); err != nil {
		s.cfg.Log.Warn("Working interval update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, merged.StartTime, merged.EndTime); err != nil {
		return nil, s.lookupError(id, err)
	}

	s.cfg.Log.Info("Working interval updated successfully", "id", id)
	return &merged, nil
}

func (s *workingIntervalService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(id, err)
	}

	s.cfg.Log.Info("Working interval deleted successfully", "id", id)
	return nil
}

func (s *workingIntervalService) ListByWorker(ctx context.Context, workerID string, startDate, endDate *string) ([]*model.WorkingInterval, error) {
	if _, err := s.workers.FindWorker(ctx, workerID); err != nil {
		return nil, err
	}

	var from, to string
	if startDate != nil && *startDate != "" {
		if _, err := calendar.ParseDate(*startDate); err != nil {
			return nil, apperrors.Validation("Invalid start_date", map[string]any{"error": err.Error()})
		}
		from = *startDate
	}
	if endDate != nil && *endDate != "" {
		if _, err := calendar.ParseDate(*endDate); err != nil {
			return nil, apperrors.Validation("Invalid end_date", map[string]any{"error": err.Error()})
		}
		to = *endDate
	}

	intervals, err := s.repo.ListByWorker(ctx, workerID, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list working intervals", "worker_id", workerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve working intervals", err)
	}
	return intervals, nil
}

// CreateBatch declares the same hours on every matching weekday of an
// inclusive date range. Dates that already carry an interval are skipped.
func (s *workingIntervalService) CreateBatch(ctx context.Context, workerID string, req *model.BatchWorkingIntervalsRequest) (*model.BatchWorkingIntervalsResult, error) {
	if _, err := s.workers.FindWorker(ctx, workerID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateBatch(req); err != nil {
		s.cfg.Log.Warn("Batch working intervals validation failed", "worker_id", workerID, "error", err)
		return nil, validationError(err)
	}

	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)
	if days := calendar.DaysBetween(start, end); days > s.cfg.MaxBatchDays {
		return nil, apperrors.Validation(
			fmt.Sprintf("Date range must not exceed %d days", s.cfg.MaxBatchDays),
			map[string]any{"days": days},
		)
	}

	weekdays := make(map[time.Weekday]bool, 7)
	if len(req.DaysOfWeek) == 0 {
		for _, d := range model.DefaultBatchWeekdays {
			weekdays[d] = true
		}
	}
	for _, name := range req.DaysOfWeek {
		d, err := calendar.ParseWeekday(name)
		if err != nil {
			return nil, apperrors.Validation("Invalid days_of_week", map[string]any{"error": err.Error()})
		}
		weekdays[d] = true
	}

	var dates []string
	for day := range calendar.Days(start, end) {
		if weekdays[day.Weekday()] {
			dates = append(dates, calendar.FormatDate(day))
		}
	}

	created, err := s.repo.BatchInsertIfAbsent(ctx, workerID, dates, normalizeTime(req.StartTime), normalizeTime(req.EndTime))
	if err != nil {
		s.cfg.Log.Error("Failed to create working intervals", "worker_id", workerID, "error", err)
		return nil, apperrors.Internal("Failed to create working intervals", err)
	}

	result := &model.BatchWorkingIntervalsResult{
		Created: created,
		Skipped: difference(dates, created),
	}

	s.cfg.Log.Info("Working intervals created successfully",
		"worker_id", workerID,
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// FindByWorkerAndDate returns nil without error when the worker has no
// interval on date.
func (s *workingIntervalService) FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error) {
	interval, err := s.repo.FindByWorkerAndDate(ctx, workerID, date)
	if err != nil {
		if errors.Is(err, workhourserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to retrieve working interval", err)
	}
	return interval, nil
}

func (s *workingIntervalService) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	return s.repo.CountByWorker(ctx, workerID)
}

func (s *workingIntervalService) lookupError(id string, err error) error {
	if errors.Is(err, workhourserrors.ErrNotFound) || errors.Is(err, workhourserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Working interval", id)
	}
	s.cfg.Log.Error("Working interval storage failure", "id", id, "error", err)
	return apperrors.Internal("Failed to access working interval", err)
}

func (s *workingIntervalService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeConflict) {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func validationError(err error) error {
	return apperrors.Validation("Invalid working interval input", map[string]any{"error": err.Error()})
}

func duplicateError(workerID, date string) error {
	return apperrors.Conflict("Working interval already exists for this date").
		WithDetails(map[string]any{"worker_id": workerID, "date": date})
}

// normalizeTime rewrites a valid time as zero-padded HH:MM so stored values
// compare lexically.
func normalizeTime(s string) string {
	t, err := calendar.ParseTimeOfDay(s)
	if err != nil {
		return s
	}
	return t.String()
}

func difference(all, subset []string) []string {
	in := make(map[string]struct{}, len(subset))
	for _, s := range subset {
		in[s] = struct{}{}
	}
	out := []string{}
	for _, s := range all {
		if _, ok := in[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

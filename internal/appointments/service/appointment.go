package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appointmentserrors "slotbook/internal/appointments/errors"
	"slotbook/internal/appointments/events"
	"slotbook/internal/appointments/repository"
	"slotbook/internal/appointments/validator"
	"slotbook/pkg/calendar"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

type AppointmentService interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (string, error)
	GetByID(ctx context.Context, id string) (*model.AppointmentDetails, error)
	ListByWorker(ctx context.Context, workerID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	Cancel(ctx context.Context, id string) error
	Reschedule(ctx context.Context, cmd model.RescheduleCommand) error
	SetStatus(ctx context.Context, id string, status string) error
	ActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error)
}

// Catalog resolves the records an appointment references. Lookups of
// unknown ids fail with NotFound.
type Catalog interface {
	FindWorker(ctx context.Context, id string) (*model.Worker, error)
	FindService(ctx context.Context, id string) (*model.Service, error)
	FindBranch(ctx context.Context, id string) (*model.Branch, error)
	FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.BookingLockRepository
	catalog   Catalog
	publisher events.Publisher
	validator *validator.AppointmentValidator
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.BookingLockRepository,
	catalog Catalog,
	publisher events.Publisher,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
) AppointmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, req *model.CreateAppointmentRequest) (string, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return "", apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.catalog.FindWorker(ctx, req.WorkerID); err != nil {
		return "", err
	}
	if _, err := s.catalog.FindService(ctx, req.ServiceID); err != nil {
		return "", err
	}
	if _, err := s.catalog.FindBranch(ctx, req.BranchID); err != nil {
		return "", err
	}

	at, err := s.parseDateTime(req.DateTime)
	if err != nil {
		return "", err
	}

	appointment := &model.Appointment{
		WorkerID:      req.WorkerID,
		BranchID:      req.BranchID,
		ServiceID:     req.ServiceID,
		DateTime:      at,
		CustomerName:  sanitizer.SanitizeName(req.CustomerName),
		CustomerPhone: sanitizer.SanitizePhone(req.CustomerPhone, s.cfg.PhoneRegion),
		Status:        model.StatusWaiting,
	}

	err = s.withSlotLock(ctx, appointment.WorkerID, appointment.ServiceID, at, func() error {
		return s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
			if err := s.verifySlotFree(ctx, appointment.WorkerID, appointment.ServiceID, at, ""); err != nil {
				return err
			}
			if err := s.repo.Create(ctx, appointment); err != nil {
				if errors.Is(err, appointmentserrors.ErrDuplicate) {
					return slotTakenError(at)
				}
				return apperrors.Internal("Failed to create appointment", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to create appointment", err, "worker_id", appointment.WorkerID, "datetime", at)
		return "", err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"worker_id", appointment.WorkerID,
		"service_id", appointment.ServiceID,
		"datetime", at,
	)
	s.publish(ctx, events.NewEvent(events.TypeCreated, appointment))
	return appointment.ID, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.AppointmentDetails, error) {
	appointment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &model.AppointmentDetails{Appointment: *appointment}

	var worker *model.Worker
	var service *model.Service
	var branch *model.Branch
	var errWorker, errService, errBranch error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		worker, errWorker = s.catalog.FindWorker(ctx, appointment.WorkerID)
	}()
	go func() {
		defer wg.Done()
		service, errService = s.catalog.FindService(ctx, appointment.ServiceID)
	}()
	go func() {
		defer wg.Done()
		branch, errBranch = s.catalog.FindBranch(ctx, appointment.BranchID)
	}()
	wg.Wait()

	for _, err := range []error{errWorker, errService, errBranch} {
		if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
	}

	if service != nil {
		details.ServiceName = service.Name
		details.DurationMinutes = service.DurationMinutes
	}
	if branch != nil {
		details.BranchName = branch.Name
		details.BranchAddress = branch.Address
		if branch.Locality != "" {
			details.BranchAddress = fmt.Sprintf("%s, %s", branch.Locality, branch.Address)
		}
	}
	if worker != nil {
		details.WorkerName = worker.Name
		cost, err := s.catalog.FindServiceCost(ctx, worker.PositionID, appointment.ServiceID)
		if err != nil {
			return nil, err
		}
		if cost != nil {
			price := cost.Price
			details.Price = &price
		}
	}

	return details, nil
}

func (s *appointmentService) ListByWorker(ctx context.Context, workerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if _, err := s.catalog.FindWorker(ctx, workerID); err != nil {
		return nil, 0, err
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByWorker(ctx, workerID)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "worker_id", workerID, "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.FindByWorker(ctx, workerID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments", "worker_id", workerID, "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appointments, count, nil
}

// Cancel is idempotent. Canceling an already canceled appointment succeeds
// without publishing a second event.
func (s *appointmentService) Cancel(ctx context.Context, id string) error {
	appointment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusCanceled); err != nil {
		return s.mutationError("Failed to cancel appointment", id, err)
	}

	s.cfg.Log.Info("Appointment canceled successfully", "id", id)
	if appointment.Status != model.StatusCanceled {
		event := events.NewEvent(events.TypeCanceled, appointment)
		event.Status = model.StatusCanceled
		event.PreviousStatus = appointment.Status
		s.publish(ctx, event)
	}
	return nil
}

// Reschedule moves the appointment and reopens it as Waiting whatever its
// previous status.
func (s *appointmentService) Reschedule(ctx context.Context, cmd model.RescheduleCommand) error {
	appointment, err := s.find(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if err := s.validator.ValidateReschedule(&cmd); err != nil {
		s.cfg.Log.Warn("Reschedule validation failed", "id", cmd.ID, "error", err)
		return apperrors.Validation("Reschedule validation failed", map[string]any{"error": err.Error()})
	}

	at, err := s.parseDateTime(cmd.DateTime)
	if err != nil {
		return err
	}

	err = s.withSlotLock(ctx, appointment.WorkerID, appointment.ServiceID, at, func() error {
		return s.repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
			if err := s.verifySlotFree(ctx, appointment.WorkerID, appointment.ServiceID, at, cmd.ID); err != nil {
				return err
			}
			if err := s.repo.UpdateDateTime(ctx, cmd.ID, at); err != nil {
				return s.mutationError("Failed to reschedule appointment", cmd.ID, err)
			}
			return nil
		})
	})
	if err != nil {
		s.logFailure("Failed to reschedule appointment", err, "id", cmd.ID, "datetime", at)
		return err
	}

	s.cfg.Log.Info("Appointment rescheduled successfully", "id", cmd.ID, "datetime", at)

	previous := *appointment
	appointment.DateTime = at
	appointment.Status = model.StatusWaiting
	event := events.NewEvent(events.TypeRescheduled, appointment)
	event.PreviousStatus = previous.Status
	event.PreviousTime = calendar.FormatDateTime(previous.DateTime)
	s.publish(ctx, event)
	return nil
}

// SetStatus overwrites the status with any enumerated value.
func (s *appointmentService) SetStatus(ctx context.Context, id string, status string) error {
	if err := s.validator.ValidateStatus(status); err != nil {
		s.cfg.Log.Warn("Status validation failed", "id", id, "status", status)
		return apperrors.Validation("Invalid appointment status", map[string]any{"error": err.Error()})
	}

	appointment, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	newStatus := model.AppointmentStatus(status)
	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return s.mutationError("Failed to update appointment status", id, err)
	}

	s.cfg.Log.Info("Appointment status updated successfully", "id", id, "status", newStatus)
	event := events.NewEvent(events.TypeStatusChanged, appointment)
	event.Status = newStatus
	event.PreviousStatus = appointment.Status
	s.publish(ctx, event)
	return nil
}

// ActiveTimes lists start times of the non-canceled appointments of a
// worker and service on date.
func (s *appointmentService) ActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error) {
	times, err := s.repo.FindActiveTimes(ctx, workerID, serviceID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to find booked times", "worker_id", workerID, "service_id", serviceID, "date", calendar.FormatDate(date), "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return times, nil
}

// --- Helpers ---

func (s *appointmentService) find(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) || errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		s.cfg.Log.Error("Failed to retrieve appointment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) parseDateTime(value string) (time.Time, error) {
	at, err := calendar.ParseDateTime(value)
	if err != nil {
		s.cfg.Log.Warn("Appointment datetime validation failed", "datetime", value)
		return time.Time{}, apperrors.Validation("Invalid datetime", map[string]any{"datetime": value, "error": err.Error()})
	}
	return at, nil
}

func (s *appointmentService) verifySlotFree(ctx context.Context, workerID, serviceID string, at time.Time, selfID string) error {
	existing, err := s.repo.FindActiveAt(ctx, workerID, serviceID, at)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to check existing appointments", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return slotTakenError(at)
}

// withSlotLock runs fn while holding the advisory lock for the slot.
func (s *appointmentService) withSlotLock(ctx context.Context, workerID, serviceID string, at time.Time, fn func() error) error {
	lockID := fmt.Sprintf("slot_%s_%s_%d", workerID, serviceID, at.Unix())

	if err := s.lockRepo.Acquire(ctx, lockID, s.cfg.BookingLockTTL); err != nil {
		if errors.Is(err, appointmentserrors.ErrLockHeld) {
			return apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire booking lock", err)
	}
	defer func() {
		if err := s.lockRepo.Release(context.WithoutCancel(ctx), lockID); err != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", err)
		}
	}()

	return fn()
}

func (s *appointmentService) mutationError(msg, id string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, appointmentserrors.ErrNotFound), errors.Is(err, appointmentserrors.ErrInvalidID):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, appointmentserrors.ErrDuplicate):
		return apperrors.Conflict("Another active appointment already holds this time slot")
	}
	s.cfg.Log.Error(msg, "id", id, "error", err)
	return apperrors.Internal(msg, err)
}

func (s *appointmentService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.HasCode(err, apperrors.CodeConflict) {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func (s *appointmentService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"type", event.Type,
			"appointment_id", event.AppointmentID,
			"error", err,
		)
	}
}

func slotTakenError(at time.Time) error {
	return apperrors.Conflict("Time slot is already booked").
		WithDetails(map[string]any{"datetime": calendar.FormatDateTime(at)})
}

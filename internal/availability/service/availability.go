package service

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/availability"
	"slotbook/pkg/calendar"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/otelx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDays = 8

type AvailabilityService interface {
	Resolve(ctx context.Context, workerID, serviceID string, windowStart time.Time, windowDays int) (model.Availability, error)
	GetAvailableSlots(ctx context.Context, workerID, serviceID string) (model.Availability, error)
	Today() time.Time
}

// Catalog resolves workers and services, failing with NotFound.
type Catalog interface {
	FindWorker(ctx context.Context, id string) (*model.Worker, error)
	FindService(ctx context.Context, id string) (*model.Service, error)
}

// IntervalStore returns nil without error when the worker is not scheduled.
type IntervalStore interface {
	FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error)
}

// AppointmentStore lists start times of non-canceled appointments.
type AppointmentStore interface {
	ActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error)
}

type availabilityService struct {
	catalog      Catalog
	intervals    IntervalStore
	appointments AppointmentStore
	clock        calendar.Clock
	cfg          *config.Config
}

func NewAvailabilityService(
	catalog Catalog,
	intervals IntervalStore,
	appointments AppointmentStore,
	clock calendar.Clock,
	cfg *config.Config,
) AvailabilityService {
	if clock == nil {
		clock = calendar.SystemClock
	}
	return &availabilityService{
		catalog:      catalog,
		intervals:    intervals,
		appointments: appointments,
		clock:        clock,
		cfg:          cfg,
	}
}

func (s *availabilityService) Today() time.Time {
	return calendar.DateOf(s.clock())
}

func (s *availabilityService) GetAvailableSlots(ctx context.Context, workerID, serviceID string) (model.Availability, error) {
	return s.Resolve(ctx, workerID, serviceID, s.Today(), s.cfg.AvailabilityWindowDays)
}

// Resolve computes the free slots of every day in
// [windowStart, windowStart+windowDays). Days without free slots are omitted.
// windowDays outside 1..MaxAvailabilityWindowDays is a Validation error.
func (s *availabilityService) Resolve(ctx context.Context, workerID, serviceID string, windowStart time.Time, windowDays int) (model.Availability, error) {
	ctx, span := otelx.Tracer("slotbook/availability").Start(ctx, "availability.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("worker.id", workerID),
		attribute.String("service.id", serviceID),
		attribute.Int("window.days", windowDays),
	)

	if err := ValidateWindow(windowDays); err != nil {
		span.SetStatus(codes.Error, "invalid window")
		return nil, err
	}
	if _, err := s.catalog.FindWorker(ctx, workerID); err != nil {
		span.SetStatus(codes.Error, "worker lookup failed")
		return nil, err
	}
	service, err := s.catalog.FindService(ctx, serviceID)
	if err != nil {
		span.SetStatus(codes.Error, "service lookup failed")
		return nil, err
	}

	now := s.clock()
	start := calendar.DateOf(windowStart)
	days := make([][]string, windowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDays)
	for i := range windowDays {
		day := start.AddDate(0, 0, i)
		g.Go(func() error {
			slots, err := s.resolveDay(gctx, workerID, serviceID, service.DurationMinutes, day, now)
			if err != nil {
				return err
			}
			days[i] = slots
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "day resolution failed")
		return nil, err
	}

	result := model.Availability{}
	for i, slots := range days {
		if len(slots) > 0 {
			result[calendar.FormatDate(start.AddDate(0, 0, i))] = slots
		}
	}

	span.SetAttributes(attribute.Int("days.with_slots", len(result)))
	s.cfg.Log.Debug("Availability resolved",
		"worker_id", workerID,
		"service_id", serviceID,
		"window_start", calendar.FormatDate(start),
		"window_days", windowDays,
		"days_with_slots", len(result),
	)
	return result, nil
}

func (s *availabilityService) resolveDay(ctx context.Context, workerID, serviceID string, duration int, day, now time.Time) ([]string, error) {
	date := calendar.FormatDate(day)

	interval, err := s.intervals.FindByWorkerAndDate(ctx, workerID, date)
	if err != nil {
		return nil, err
	}
	if interval == nil {
		return nil, nil
	}

	startTime, errStart := calendar.ParseTimeOfDay(interval.StartTime)
	endTime, errEnd := calendar.ParseTimeOfDay(interval.EndTime)
	if errStart != nil || errEnd != nil {
		s.cfg.Log.Warn("Skipping malformed working interval", "id", interval.ID, "worker_id", workerID, "date", date)
		return nil, nil
	}

	booked, err := s.appointments.ActiveTimes(ctx, workerID, serviceID, day)
	if err != nil {
		return nil, err
	}
	taken := make(map[calendar.TimeOfDay]struct{}, len(booked))
	for _, t := range booked {
		taken[calendar.TimeOfDayOf(t)] = struct{}{}
	}

	isToday := calendar.DateOf(now).Equal(day)
	nowTime := calendar.TimeOfDayOf(now)

	var free []string
	for slot := range availability.Slots(startTime, endTime, duration) {
		if _, ok := taken[slot]; ok {
			continue
		}
		if isToday && slot <= nowTime {
			continue
		}
		free = append(free, slot.String())
	}
	return free, nil
}

// ValidateWindow checks a caller supplied window length.
func ValidateWindow(days int) error {
	if days < 1 || days > config.MaxAvailabilityWindowDays {
		return apperrors.Validation(
			fmt.Sprintf("days must be between 1 and %d", config.MaxAvailabilityWindowDays),
			map[string]any{"days": days},
		)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	appointmentserrors "slotbook/internal/appointments/errors"
	"slotbook/internal/appointments/events"
	"slotbook/internal/appointments/validator"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// fakeAppointmentRepository stores appointments in memory and enforces the
// same active-slot uniqueness as the storage index.
type fakeAppointmentRepository struct {
	mu           sync.Mutex
	appointments map[string]*model.Appointment
	nextID       int
}

func newFakeAppointmentRepository() *fakeAppointmentRepository {
	return &fakeAppointmentRepository{appointments: map[string]*model.Appointment{}}
}

func (f *fakeAppointmentRepository) slotTaken(a *model.Appointment, excludeID string) bool {
	for id, other := range f.appointments {
		if id == excludeID || !other.Status.Active() || !a.Status.Active() {
			continue
		}
		if other.WorkerID == a.WorkerID && other.ServiceID == a.ServiceID && other.DateTime.Equal(a.DateTime) {
			return true
		}
	}
	return false
}

func (f *fakeAppointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slotTaken(a, "") {
		return appointmentserrors.ErrDuplicate
	}
	f.nextID++
	a.ID = fmt.Sprintf("appt-%d", f.nextID)
	stored := *a
	f.appointments[a.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, appointmentserrors.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAppointmentRepository) FindActiveAt(ctx context.Context, workerID, serviceID string, at time.Time) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.WorkerID == workerID && a.ServiceID == serviceID && a.DateTime.Equal(at) && a.Status.Active() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, appointmentserrors.ErrNotFound
}

func (f *fakeAppointmentRepository) FindActiveTimes(ctx context.Context, workerID, serviceID string, date time.Time) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var times []time.Time
	for _, a := range f.appointments {
		if a.WorkerID == workerID && a.ServiceID == serviceID && a.Status.Active() &&
			a.DateTime.Year() == date.Year() && a.DateTime.YearDay() == date.YearDay() {
			times = append(times, a.DateTime)
		}
	}
	return times, nil
}

func (f *fakeAppointmentRepository) FindByWorker(ctx context.Context, workerID string, limit int, offset int64) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Appointment{}
	for _, a := range f.appointments {
		if a.WorkerID == workerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

func (f *fakeAppointmentRepository) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	list, _ := f.FindByWorker(ctx, workerID, 0, 0)
	return int64(len(list)), nil
}

func (f *fakeAppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return appointmentserrors.ErrNotFound
	}
	candidate := *a
	candidate.Status = status
	if f.slotTaken(&candidate, id) {
		return appointmentserrors.ErrDuplicate
	}
	a.Status = status
	return nil
}

func (f *fakeAppointmentRepository) UpdateDateTime(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return appointmentserrors.ErrNotFound
	}
	a.DateTime = at
	a.Status = model.StatusWaiting
	return nil
}

func (f *fakeAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type fakeLockRepository struct {
	mu    sync.Mutex
	held  map[string]bool
	taken int
}

func (f *fakeLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]bool{}
	}
	if f.held[lockID] {
		return appointmentserrors.ErrLockHeld
	}
	f.held[lockID] = true
	f.taken++
	return nil
}

func (f *fakeLockRepository) Release(ctx context.Context, lockID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, lockID)
	return nil
}

type fakeCatalog struct {
	workers  map[string]*model.Worker
	services map[string]*model.Service
	branches map[string]*model.Branch
	costs    map[string]float64
}

func (f *fakeCatalog) FindWorker(ctx context.Context, id string) (*model.Worker, error) {
	if w, ok := f.workers[id]; ok {
		return w, nil
	}
	return nil, apperrors.NotFoundWithID("Worker", id)
}

func (f *fakeCatalog) FindService(ctx context.Context, id string) (*model.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, apperrors.NotFoundWithID("Service", id)
}

func (f *fakeCatalog) FindBranch(ctx context.Context, id string) (*model.Branch, error) {
	if b, ok := f.branches[id]; ok {
		return b, nil
	}
	return nil, apperrors.NotFoundWithID("Branch", id)
}

func (f *fakeCatalog) FindServiceCost(ctx context.Context, positionID, serviceID string) (*model.ServiceCost, error) {
	if price, ok := f.costs[positionID+"/"+serviceID]; ok {
		return &model.ServiceCost{PositionID: positionID, ServiceID: serviceID, Price: price}, nil
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       AppointmentService
	repo      *fakeAppointmentRepository
	locks     *fakeLockRepository
	publisher *recordingPublisher
}

func newFixture() *fixture {
	log := logger.Discard()
	cfg := &config.Config{
		Log:            log,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		BookingLockTTL: 10 * time.Second,
		PhoneRegion:    "IL",
	}
	catalog := &fakeCatalog{
		workers:  map[string]*model.Worker{"w1": {ID: "w1", Name: "Dana", BranchID: "b1", PositionID: "stylist"}},
		services: map[string]*model.Service{"s1": {ID: "s1", Name: "Haircut", DurationMinutes: 30}},
		branches: map[string]*model.Branch{"b1": {ID: "b1", Name: "Center", Locality: "Haifa", Address: "Herzl 1"}},
		costs:    map[string]float64{"stylist/s1": 80},
	}
	f := &fixture{
		repo:      newFakeAppointmentRepository(),
		locks:     &fakeLockRepository{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewAppointmentService(f.repo, f.locks, catalog, f.publisher, validator.NewAppointmentValidator(log), cfg)
	return f
}

func request(datetime string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		WorkerID:      "w1",
		ServiceID:     "s1",
		BranchID:      "b1",
		DateTime:      datetime,
		CustomerName:  "  Maya   Levi ",
		CustomerPhone: "052-123-4567",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, err := f.svc.Create(ctx, request("2024-05-06T09:30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.repo.FindByID(ctx, id)
	if stored.Status != model.StatusWaiting {
		t.Errorf("expected status Waiting, got %s", stored.Status)
	}
	if want := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC); !stored.DateTime.Equal(want) {
		t.Errorf("expected datetime %v, got %v", want, stored.DateTime)
	}
	if stored.CustomerName != "Maya Levi" {
		t.Errorf("expected sanitized name, got %q", stored.CustomerName)
	}
	if stored.CustomerPhone != "+972521234567" {
		t.Errorf("expected E.164 phone, got %q", stored.CustomerPhone)
	}
	if len(f.locks.held) != 0 {
		t.Errorf("expected lock to be released, still held: %v", f.locks.held)
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != events.TypeCreated {
		t.Errorf("expected one created event, got %v", got)
	}
}

func TestCreate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.CreateAppointmentRequest)
		wantCode string
	}{
		{name: "unknown worker", mutate: func(r *model.CreateAppointmentRequest) { r.WorkerID = "w9" }, wantCode: apperrors.CodeNotFound},
		{name: "unknown service", mutate: func(r *model.CreateAppointmentRequest) { r.ServiceID = "s9" }, wantCode: apperrors.CodeNotFound},
		{name: "unknown branch", mutate: func(r *model.CreateAppointmentRequest) { r.BranchID = "b9" }, wantCode: apperrors.CodeNotFound},
		{name: "malformed datetime", mutate: func(r *model.CreateAppointmentRequest) { r.DateTime = "next tuesday" }, wantCode: apperrors.CodeValidation},
		{name: "missing customer name", mutate: func(r *model.CreateAppointmentRequest) { r.CustomerName = "" }, wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := request("2024-05-06T09:30")
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), req)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
			if len(f.publisher.types()) != 0 {
				t.Error("no event should be published on failure")
			}
		})
	}
}

func TestCreate_DoubleBookingIsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, request("2024-05-06T09:30")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Create(ctx, request("2024-05-06 09:30:00")); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(ctx, request("2024-05-06T10:00")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !apperrors.HasCode(err, apperrors.CodeConflict) {
				t.Errorf("expected Conflict, got %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly one booking to succeed, got %d", succeeded)
	}
}

func TestCreate_CanceledSlotIsReusable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))
	if err := f.svc.Cancel(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Create(ctx, request("2024-05-06T09:30")); err != nil {
		t.Errorf("canceled appointment should not block the slot, got %v", err)
	}
}

func TestCreate_LockHeld(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)
	f.locks.held = map[string]bool{fmt.Sprintf("slot_w1_s1_%d", at.Unix()): true}

	_, err := f.svc.Create(context.Background(), request("2024-05-06T09:30"))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected Conflict while lock is held, got %v", err)
	}
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	if _, err := f.svc.Create(context.Background(), request("2024-05-06T09:30")); err != nil {
		t.Errorf("publish failure must not fail the request, got %v", err)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))

	for i := range 2 {
		if err := f.svc.Cancel(ctx, id); err != nil {
			t.Fatalf("cancel #%d: unexpected error: %v", i+1, err)
		}
		stored, _ := f.repo.FindByID(ctx, id)
		if stored.Status != model.StatusCanceled {
			t.Errorf("cancel #%d: expected Canceled, got %s", i+1, stored.Status)
		}
	}

	want := []string{events.TypeCreated, events.TypeCanceled}
	if got := f.publisher.types(); len(got) != len(want) || got[1] != want[1] {
		t.Errorf("expected events %v, got %v", want, got)
	}

	if err := f.svc.Cancel(ctx, "missing"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestReschedule_ResetsStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))

	if err := f.svc.SetStatus(ctx, id, string(model.StatusFinished)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.Reschedule(ctx, model.RescheduleCommand{ID: id, DateTime: "2024-05-07T11:00:00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.repo.FindByID(ctx, id)
	if stored.Status != model.StatusWaiting {
		t.Errorf("expected Waiting after reschedule, got %s", stored.Status)
	}
	if want := time.Date(2024, 5, 7, 11, 0, 0, 0, time.UTC); !stored.DateTime.Equal(want) {
		t.Errorf("expected datetime %v, got %v", want, stored.DateTime)
	}
}

func TestReschedule_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))
	if _, err := f.svc.Create(ctx, request("2024-05-06T10:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		cmd      model.RescheduleCommand
		wantCode string
	}{
		{name: "unknown appointment", cmd: model.RescheduleCommand{ID: "missing", DateTime: "2024-05-06T11:00"}, wantCode: apperrors.CodeNotFound},
		{name: "malformed datetime", cmd: model.RescheduleCommand{ID: first, DateTime: "06/05/2024 11:00"}, wantCode: apperrors.CodeValidation},
		{name: "empty datetime", cmd: model.RescheduleCommand{ID: first}, wantCode: apperrors.CodeValidation},
		{name: "occupied slot", cmd: model.RescheduleCommand{ID: first, DateTime: "2024-05-06T10:00"}, wantCode: apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Reschedule(ctx, tt.cmd)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	if err := f.svc.Reschedule(ctx, model.RescheduleCommand{ID: first, DateTime: "2024-05-06T09:30"}); err != nil {
		t.Errorf("rescheduling onto its own slot should succeed, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))

	for _, status := range []model.AppointmentStatus{model.StatusFinished, model.StatusInProcess, model.StatusWaiting} {
		if err := f.svc.SetStatus(ctx, id, string(status)); err != nil {
			t.Fatalf("SetStatus(%s): unexpected error: %v", status, err)
		}
		stored, _ := f.repo.FindByID(ctx, id)
		if stored.Status != status {
			t.Errorf("expected %s, got %s", status, stored.Status)
		}
	}

	if err := f.svc.SetStatus(ctx, id, "Done"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected Validation, got %v", err)
	}
	if err := f.svc.SetStatus(ctx, "missing", string(model.StatusWaiting)); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSetStatus_ReactivatingOntoTakenSlotIsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))
	if err := f.svc.Cancel(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Create(ctx, request("2024-05-06T09:30")); err != nil {
		t.Fatalf("rebooking a canceled slot: unexpected error: %v", err)
	}
	published := len(f.publisher.types())

	err := f.svc.SetStatus(ctx, first, string(model.StatusWaiting))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}

	stored, _ := f.repo.FindByID(ctx, first)
	if stored.Status != model.StatusCanceled {
		t.Errorf("expected appointment to stay Canceled, got %s", stored.Status)
	}
	if got := len(f.publisher.types()); got != published {
		t.Errorf("no event should be published on conflict, got %d new", got-published)
	}

	if err := f.svc.SetStatus(ctx, first, string(model.StatusCanceled)); err != nil {
		t.Errorf("setting Canceled on a canceled appointment should succeed, got %v", err)
	}
}

func TestGetByID_Details(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id, _ := f.svc.Create(ctx, request("2024-05-06T09:30"))

	details, err := f.svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.WorkerName != "Dana" || details.ServiceName != "Haircut" || details.DurationMinutes != 30 {
		t.Errorf("unexpected joined fields: %+v", details)
	}
	if details.BranchAddress != "Haifa, Herzl 1" {
		t.Errorf("unexpected branch address %q", details.BranchAddress)
	}
	if details.Price == nil || *details.Price != 80 {
		t.Errorf("expected price 80, got %v", details.Price)
	}

	if _, err := f.svc.GetByID(ctx, "missing"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListByWorker(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, dt := range []string{"2024-05-07T09:00", "2024-05-06T09:00"} {
		if _, err := f.svc.Create(ctx, request(dt)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	list, total, err := f.svc.ListByWorker(ctx, "w1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 appointments, got %d (total %d)", len(list), total)
	}
	if !list[0].DateTime.Before(list[1].DateTime) {
		t.Error("expected appointments ordered by datetime")
	}

	if _, _, err := f.svc.ListByWorker(ctx, "w9", 0, 0); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

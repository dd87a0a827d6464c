package service

import (
	"context"
	"slices"
	"sort"
	"testing"
	"time"

	workhourserrors "slotbook/internal/workhours/errors"
	"slotbook/internal/workhours/validator"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// fakeRepository keeps intervals in memory keyed by id.
type fakeRepository struct {
	intervals map[string]*model.WorkingInterval
	nextID    int
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{intervals: map[string]*model.WorkingInterval{}}
}

func (f *fakeRepository) Create(ctx context.Context, interval *model.WorkingInterval) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	interval.ID = string(rune('a' + f.nextID - 1))
	stored := *interval
	f.intervals[interval.ID] = &stored
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*model.WorkingInterval, error) {
	if wi, ok := f.intervals[id]; ok {
		copied := *wi
		return &copied, nil
	}
	return nil, workhourserrors.ErrNotFound
}

func (f *fakeRepository) FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error) {
	for _, wi := range f.intervals {
		if wi.WorkerID == workerID && wi.Date == date {
			return wi, nil
		}
	}
	return nil, workhourserrors.ErrNotFound
}

func (f *fakeRepository) ListByWorker(ctx context.Context, workerID, startDate, endDate string) ([]*model.WorkingInterval, error) {
	out := []*model.WorkingInterval{}
	for _, wi := range f.intervals {
		if wi.WorkerID != workerID {
			continue
		}
		if startDate != "" && wi.Date < startDate {
			continue
		}
		if endDate != "" && wi.Date > endDate {
			continue
		}
		out = append(out, wi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeRepository) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	var n int64
	for _, wi := range f.intervals {
		if wi.WorkerID == workerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) Update(ctx context.Context, id, startTime, endTime string) error {
	wi, ok := f.intervals[id]
	if !ok {
		return workhourserrors.ErrNotFound
	}
	wi.StartTime = startTime
	wi.EndTime = endTime
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.intervals[id]; !ok {
		return workhourserrors.ErrInvalidID
	}
	delete(f.intervals, id)
	return nil
}

func (f *fakeRepository) BatchInsertIfAbsent(ctx context.Context, workerID string, dates []string, startTime, endTime string) ([]string, error) {
	created := []string{}
	for _, date := range dates {
		if existing, _ := f.FindByWorkerAndDate(ctx, workerID, date); existing != nil {
			continue
		}
		if err := f.Create(ctx, &model.WorkingInterval{WorkerID: workerID, Date: date, StartTime: startTime, EndTime: endTime}); err != nil {
			return nil, err
		}
		created = append(created, date)
	}
	return created, nil
}

func (f *fakeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type fakeWorkers map[string]*model.Worker

func (f fakeWorkers) FindWorker(ctx context.Context, id string) (*model.Worker, error) {
	if w, ok := f[id]; ok {
		return w, nil
	}
	return nil, apperrors.NotFoundWithID("Worker", id)
}

func newTestService(repo *fakeRepository) WorkingIntervalService {
	log := logger.Discard()
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxBatchDays: config.DefaultMaxBatchDays,
	}
	workers := fakeWorkers{"w1": {ID: "w1", Name: "Dana"}}
	return NewWorkingIntervalService(repo, workers, validator.NewWorkingIntervalValidator(log), cfg)
}

func TestCreate(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	interval, err := svc.Create(ctx, "w1", &model.WorkingIntervalRequest{Date: "2024-05-06", StartTime: "9:00", EndTime: "17:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval.ID == "" {
		t.Error("expected id to be assigned")
	}
	if interval.StartTime != "09:00" {
		t.Errorf("expected normalised start time 09:00, got %s", interval.StartTime)
	}

	tests := []struct {
		name     string
		workerID string
		req      model.WorkingIntervalRequest
		wantCode string
	}{
		{
			name:     "same date again",
			workerID: "w1",
			req:      model.WorkingIntervalRequest{Date: "2024-05-06", StartTime: "10:00", EndTime: "12:00"},
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "unknown worker",
			workerID: "w9",
			req:      model.WorkingIntervalRequest{Date: "2024-05-07", StartTime: "10:00", EndTime: "12:00"},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "start not before end",
			workerID: "w1",
			req:      model.WorkingIntervalRequest{Date: "2024-05-07", StartTime: "12:00", EndTime: "12:00"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "malformed date",
			workerID: "w1",
			req:      model.WorkingIntervalRequest{Date: "2024-13-01", StartTime: "10:00", EndTime: "12:00"},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.workerID, &tt.req)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCreate_DuplicateKeyIsConflict(t *testing.T) {
	repo := newFakeRepository()
	repo.createErr = workhourserrors.ErrDuplicate
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), "w1", &model.WorkingIntervalRequest{Date: "2024-05-06", StartTime: "09:00", EndTime: "17:00"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "w1", &model.WorkingIntervalRequest{Date: "2024-05-06", StartTime: "09:00", EndTime: "17:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	end := "13:30"
	updated, err := svc.Update(ctx, created.ID, &model.WorkingIntervalUpdate{EndTime: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.StartTime != "09:00" || updated.EndTime != "13:30" {
		t.Errorf("unexpected interval after update: %s-%s", updated.StartTime, updated.EndTime)
	}

	early := "08:00"
	if _, err := svc.Update(ctx, created.ID, &model.WorkingIntervalUpdate{EndTime: &early}); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected Validation when end moves before start, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", &model.WorkingIntervalUpdate{EndTime: &end}); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	created, _ := svc.Create(ctx, "w1", &model.WorkingIntervalRequest{Date: "2024-05-06", StartTime: "09:00", EndTime: "17:00"})
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}

func TestListByWorker(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, date := range []string{"2024-05-08", "2024-05-06", "2024-05-07"} {
		if _, err := svc.Create(ctx, "w1", &model.WorkingIntervalRequest{Date: date, StartTime: "09:00", EndTime: "17:00"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	from := "2024-05-07"
	intervals, err := svc.ListByWorker(ctx, "w1", &from, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var dates []string
	for _, wi := range intervals {
		dates = append(dates, wi.Date)
	}
	if !slices.Equal(dates, []string{"2024-05-07", "2024-05-08"}) {
		t.Errorf("unexpected dates: %v", dates)
	}

	bad := "07/05/2024"
	if _, err := svc.ListByWorker(ctx, "w1", &bad, nil); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected Validation for malformed date, got %v", err)
	}
	if _, err := svc.ListByWorker(ctx, "w9", nil, nil); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NotFound for unknown worker, got %v", err)
	}
}

func TestCreateBatch(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	// 2024-05-06 is a Monday.
	if _, err := svc.Create(ctx, "w1", &model.WorkingIntervalRequest{Date: "2024-05-07", StartTime: "10:00", EndTime: "14:00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.CreateBatch(ctx, "w1", &model.BatchWorkingIntervalsRequest{
		StartDate: "2024-05-04",
		EndDate:   "2024-05-12",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCreated := []string{"2024-05-06", "2024-05-08", "2024-05-09", "2024-05-10"}
	if !slices.Equal(result.Created, wantCreated) {
		t.Errorf("created = %v, want %v", result.Created, wantCreated)
	}
	if !slices.Equal(result.Skipped, []string{"2024-05-07"}) {
		t.Errorf("skipped = %v, want [2024-05-07]", result.Skipped)
	}

	kept, _ := repo.FindByWorkerAndDate(ctx, "w1", "2024-05-07")
	if kept.StartTime != "10:00" {
		t.Errorf("existing interval must not be overwritten, got start %s", kept.StartTime)
	}
}

func TestCreateBatch_Weekdays(t *testing.T) {
	svc := newTestService(newFakeRepository())

	result, err := svc.CreateBatch(context.Background(), "w1", &model.BatchWorkingIntervalsRequest{
		StartDate:  "2024-05-01",
		EndDate:    "2024-05-14",
		StartTime:  "09:00",
		EndTime:    "17:00",
		DaysOfWeek: []string{"Sunday", "sat"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"2024-05-04", "2024-05-05", "2024-05-11", "2024-05-12"}
	if !slices.Equal(result.Created, want) {
		t.Errorf("created = %v, want %v", result.Created, want)
	}
}

func TestCreateBatch_RangeTooLong(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.CreateBatch(context.Background(), "w1", &model.BatchWorkingIntervalsRequest{
		StartDate: "2024-01-01",
		EndDate:   "2025-06-01",
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestFindByWorkerAndDate_Absent(t *testing.T) {
	svc := newTestService(newFakeRepository())

	interval, err := svc.FindByWorkerAndDate(context.Background(), "w1", "2024-05-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interval != nil {
		t.Errorf("expected nil interval, got %+v", interval)
	}
}

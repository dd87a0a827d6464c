package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockWorkingIntervalService struct {
	createFunc func(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error)
	batchFunc  func(ctx context.Context, workerID string, req *model.BatchWorkingIntervalsRequest) (*model.BatchWorkingIntervalsResult, error)
	listFunc   func(ctx context.Context, workerID string, startDate, endDate *string) ([]*model.WorkingInterval, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockWorkingIntervalService) Create(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, workerID, req)
	}
	return &model.WorkingInterval{}, nil
}

func (m *mockWorkingIntervalService) Update(ctx context.Context, id string, upd *model.WorkingIntervalUpdate) (*model.WorkingInterval, error) {
	return &model.WorkingInterval{ID: id}, nil
}

func (m *mockWorkingIntervalService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockWorkingIntervalService) ListByWorker(ctx context.Context, workerID string, startDate, endDate *string) ([]*model.WorkingInterval, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, workerID, startDate, endDate)
	}
	return []*model.WorkingInterval{}, nil
}

func (m *mockWorkingIntervalService) CreateBatch(ctx context.Context, workerID string, req *model.BatchWorkingIntervalsRequest) (*model.BatchWorkingIntervalsResult, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, workerID, req)
	}
	return &model.BatchWorkingIntervalsResult{}, nil
}

func (m *mockWorkingIntervalService) FindByWorkerAndDate(ctx context.Context, workerID, date string) (*model.WorkingInterval, error) {
	return nil, nil
}

func (m *mockWorkingIntervalService) CountByWorker(ctx context.Context, workerID string) (int64, error) {
	return 0, nil
}

func newRouter(svc *mockWorkingIntervalService) *httprouter.Router {
	router := httprouter.New()
	NewWorkingIntervalHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_PassesWorkerAndBody(t *testing.T) {
	svc := &mockWorkingIntervalService{
		createFunc: func(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error) {
			if workerID != "w1" || req.Date != "2024-05-06" || req.StartTime != "09:00" {
				t.Errorf("unexpected call: %s %+v", workerID, req)
			}
			return &model.WorkingInterval{ID: "i1", WorkerID: workerID, Date: req.Date, StartTime: req.StartTime, EndTime: req.EndTime}, nil
		},
	}

	body := `{"date":"2024-05-06","start_time":"09:00","end_time":"17:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workers/w1/work-hours", strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp struct {
		Data model.WorkingInterval `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "i1" {
		t.Errorf("expected id i1, got %q", resp.Data.ID)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workers/w1/work-hours", strings.NewReader("{"))
	w := httptest.NewRecorder()
	newRouter(&mockWorkingIntervalService{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCreate_ConflictStatus(t *testing.T) {
	svc := &mockWorkingIntervalService{
		createFunc: func(ctx context.Context, workerID string, req *model.WorkingIntervalRequest) (*model.WorkingInterval, error) {
			return nil, apperrors.Conflict("Working interval already exists for this date")
		},
	}

	body := `{"date":"2024-05-06","start_time":"09:00","end_time":"17:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workers/w1/work-hours", strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestListByWorker_DateFilters(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantStart string
		wantEnd   string
	}{
		{"no filters", "", "", ""},
		{"start only", "?start_date=2024-05-01", "2024-05-01", ""},
		{"both", "?start_date=2024-05-01&end_date=2024-05-31", "2024-05-01", "2024-05-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotStart, gotEnd string
			svc := &mockWorkingIntervalService{
				listFunc: func(ctx context.Context, workerID string, startDate, endDate *string) ([]*model.WorkingInterval, error) {
					if startDate != nil {
						gotStart = *startDate
					}
					if endDate != nil {
						gotEnd = *endDate
					}
					return []*model.WorkingInterval{}, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/workers/w1/work-hours"+tt.query, nil)
			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if gotStart != tt.wantStart || gotEnd != tt.wantEnd {
				t.Errorf("got (%q, %q), want (%q, %q)", gotStart, gotEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCreateBatch_ReturnsResult(t *testing.T) {
	svc := &mockWorkingIntervalService{
		batchFunc: func(ctx context.Context, workerID string, req *model.BatchWorkingIntervalsRequest) (*model.BatchWorkingIntervalsResult, error) {
			if len(req.DaysOfWeek) != 2 {
				t.Errorf("expected 2 weekdays, got %v", req.DaysOfWeek)
			}
			return &model.BatchWorkingIntervalsResult{Created: []string{"2024-05-06"}, Skipped: []string{"2024-05-08"}}, nil
		},
	}

	body := `{"start_date":"2024-05-06","end_date":"2024-05-08","start_time":"09:00","end_time":"12:00","days_of_week":["Monday","Wednesday"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workers/w1/batch-work-hours", strings.NewReader(body))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp struct {
		Data model.BatchWorkingIntervalsResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data.Created) != 1 || len(resp.Data.Skipped) != 1 {
		t.Errorf("unexpected result %+v", resp.Data)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := &mockWorkingIntervalService{
		deleteFunc: func(ctx context.Context, id string) error {
			return apperrors.NotFoundWithID("Working interval", id)
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/work-hours/missing", nil)
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

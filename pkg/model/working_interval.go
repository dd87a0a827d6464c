package model

import "time"

// WorkingInterval is a worker's declared availability on one calendar date.
// Date is YYYY-MM-DD, StartTime and EndTime are HH:MM.
type WorkingInterval struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	WorkerID  string    `json:"worker_id" bson:"worker_id"`
	Date      string    `json:"date" bson:"date"`
	StartTime string    `json:"start_time" bson:"start_time"`
	EndTime   string    `json:"end_time" bson:"end_time"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type WorkingIntervalRequest struct {
	Date      string `json:"date" validate:"required,date_only"`
	StartTime string `json:"start_time" validate:"required,time_of_day"`
	EndTime   string `json:"end_time" validate:"required,time_of_day"`
}

type WorkingIntervalUpdate struct {
	StartTime *string `json:"start_time,omitempty" validate:"omitempty,time_of_day"`
	EndTime   *string `json:"end_time,omitempty" validate:"omitempty,time_of_day"`
}

type BatchWorkingIntervalsRequest struct {
	StartDate  string   `json:"start_date" validate:"required,date_only"`
	EndDate    string   `json:"end_date" validate:"required,date_only"`
	StartTime  string   `json:"start_time" validate:"required,time_of_day"`
	EndTime    string   `json:"end_time" validate:"required,time_of_day"`
	DaysOfWeek []string `json:"days_of_week,omitempty" validate:"omitempty,max=7,dive,weekday"`
}

type BatchWorkingIntervalsResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// DefaultBatchWeekdays is used when a batch request names no weekdays.
var DefaultBatchWeekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
}

package model

import (
	"encoding/json"
	"time"

	"slotbook/pkg/calendar"
)

type AppointmentStatus string

const (
	StatusWaiting   AppointmentStatus = "Waiting"
	StatusInProcess AppointmentStatus = "In-process"
	StatusFinished  AppointmentStatus = "Finished"
	StatusCanceled  AppointmentStatus = "Canceled"
)

var AppointmentStatuses = []AppointmentStatus{
	StatusWaiting,
	StatusInProcess,
	StatusFinished,
	StatusCanceled,
}

func (s AppointmentStatus) Valid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Active reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s.Valid() && s != StatusCanceled
}

// ActiveStatuses lists every status that occupies a slot.
func ActiveStatuses() []AppointmentStatus {
	return []AppointmentStatus{StatusWaiting, StatusInProcess, StatusFinished}
}

type Appointment struct {
	ID            string            `json:"id,omitempty" bson:"_id,omitempty"`
	WorkerID      string            `json:"worker_id" bson:"worker_id"`
	BranchID      string            `json:"branch_id" bson:"branch_id"`
	ServiceID     string            `json:"service_id" bson:"service_id"`
	DateTime      time.Time         `json:"datetime" bson:"datetime"`
	CustomerName  string            `json:"customer_name" bson:"customer_name"`
	CustomerPhone string            `json:"customer_phone" bson:"customer_phone"`
	Status        AppointmentStatus `json:"status" bson:"status"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
}

// appointmentFields has Appointment's fields without its methods.
type appointmentFields Appointment

type appointmentJSON struct {
	appointmentFields
	DateTime string `json:"datetime"`
}

func (a Appointment) toJSON() appointmentJSON {
	return appointmentJSON{
		appointmentFields: appointmentFields(a),
		DateTime:          calendar.FormatDateTime(a.DateTime),
	}
}

// MarshalJSON writes datetime as a naive wall clock, YYYY-MM-DDTHH:MM:SS.
func (a Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.toJSON())
}

type CreateAppointmentRequest struct {
	WorkerID      string `json:"worker_id" validate:"required"`
	ServiceID     string `json:"service_id" validate:"required"`
	BranchID      string `json:"branch_id" validate:"required"`
	DateTime      string `json:"datetime" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required,max=40"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=20"`
}

// RescheduleCommand moves an appointment to a new start and reopens it.
type RescheduleCommand struct {
	ID       string `json:"-"`
	DateTime string `json:"datetime" validate:"required"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentDetails joins an appointment with the records it references.
// Price is nil when the worker's position has no cost for the service.
type AppointmentDetails struct {
	Appointment
	WorkerName      string   `json:"worker_name"`
	ServiceName     string   `json:"service_name"`
	DurationMinutes int      `json:"duration_minutes"`
	BranchName      string   `json:"branch_name"`
	BranchAddress   string   `json:"branch_address,omitempty"`
	Price           *float64 `json:"price,omitempty"`
}

// MarshalJSON is required because Appointment's would otherwise be promoted
// and drop the joined fields.
func (d AppointmentDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		appointmentJSON
		WorkerName      string   `json:"worker_name"`
		ServiceName     string   `json:"service_name"`
		DurationMinutes int      `json:"duration_minutes"`
		BranchName      string   `json:"branch_name"`
		BranchAddress   string   `json:"branch_address,omitempty"`
		Price           *float64 `json:"price,omitempty"`
	}{
		appointmentJSON: d.Appointment.toJSON(),
		WorkerName:      d.WorkerName,
		ServiceName:     d.ServiceName,
		DurationMinutes: d.DurationMinutes,
		BranchName:      d.BranchName,
		BranchAddress:   d.BranchAddress,
		Price:           d.Price,
	})
}

// Availability maps a YYYY-MM-DD date to its ascending free HH:MM slots.
// Dates without free slots are absent.
type Availability map[string][]string

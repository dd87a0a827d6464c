package model

type Worker struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string `json:"name" bson:"name"`
	BranchID   string `json:"branch_id" bson:"branch_id"`
	PositionID string `json:"position_id" bson:"position_id"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
}

type Service struct {
	ID              string `json:"id,omitempty" bson:"_id,omitempty"`
	BranchID        string `json:"branch_id" bson:"branch_id"`
	Name            string `json:"name" bson:"name"`
	DurationMinutes int    `json:"duration_minutes" bson:"duration_minutes"`
}

type Branch struct {
	ID            string `json:"id,omitempty" bson:"_id,omitempty"`
	BusinessID    string `json:"business_id" bson:"business_id"`
	Name          string `json:"name" bson:"name"`
	Locality      string `json:"locality,omitempty" bson:"locality,omitempty"`
	Address       string `json:"address,omitempty" bson:"address,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	StartWorkHour string `json:"start_work_hour,omitempty" bson:"start_work_hour,omitempty"`
	EndWorkHour   string `json:"end_work_hour,omitempty" bson:"end_work_hour,omitempty"`
}

// Position is a role within a branch. Service prices are set per position.
type Position struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	BranchID string `json:"branch_id" bson:"branch_id"`
	Name     string `json:"name" bson:"name"`
}

// ServiceCost prices a service for workers holding a given position.
type ServiceCost struct {
	ID         string  `json:"id,omitempty" bson:"_id,omitempty"`
	PositionID string  `json:"position_id" bson:"position_id"`
	ServiceID  string  `json:"service_id" bson:"service_id"`
	Price      float64 `json:"price" bson:"price"`
}

// WorkerService is a service a worker performs, priced for the worker's position.
type WorkerService struct {
	ServiceID       string  `json:"service_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

// PositionServices lists the services a position prices.
type PositionServices struct {
	PositionID   string           `json:"position_id"`
	PositionName string           `json:"position_name"`
	Services     []*WorkerService `json:"services"`
}

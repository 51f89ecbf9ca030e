package models

import (
	"time"

	"github.com/lib/pq"
)

// TransportRoute is a bus route with ordered stops.
type TransportRoute struct {
	ID            string         `db:"id" json:"id"`
	RouteName     string         `db:"route_name" json:"routeName"`
	VehicleNumber string         `db:"vehicle_number" json:"vehicleNumber"`
	Driver        string         `db:"driver" json:"driver"`
	Stops         pq.StringArray `db:"stops" json:"stops"`
	Capacity      int            `db:"capacity" json:"capacity"`
	Fee           int64          `db:"fee" json:"fee"`
	Assigned      int            `db:"assigned" json:"assigned"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasStop reports whether the route serves the named stop.
func (r TransportRoute) HasStop(stop string) bool {
	for _, s := range r.Stops {
		if s == stop {
			return true
		}
	}
	return false
}

// TransportAssignment links a student to a route and boarding stop.
type TransportAssignment struct {
	ID        string    `db:"id" json:"id"`
	RouteID   string    `db:"route_id" json:"routeId"`
	StudentID string    `db:"student_id" json:"studentId"`
	Stop      string    `db:"stop" json:"stop"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

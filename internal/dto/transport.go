package dto

// RouteRequest creates or updates a transport route.
type RouteRequest struct {
	RouteName     string   `json:"routeName" validate:"required"`
	VehicleNumber string   `json:"vehicleNumber" validate:"required"`
	Driver        string   `json:"driver"`
	Stops         []string `json:"stops" validate:"required,min=1,dive,required"`
	Capacity      int      `json:"capacity" validate:"required,gt=0"`
	Fee           int64    `json:"fee" validate:"gte=0"`
}

// AssignRouteRequest assigns a student to a route stop.
type AssignRouteRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Stop      string `json:"stop" validate:"required"`
}

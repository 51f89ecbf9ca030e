package dto

// HostelRequest creates or updates a hostel.
type HostelRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=boys girls mixed"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	Warden   string `json:"warden"`
}

// AllocateRoomRequest places a student into a hostel.
type AllocateRoomRequest struct {
	StudentID  string `json:"studentId" validate:"required"`
	RoomNumber string `json:"roomNumber" validate:"required"`
}

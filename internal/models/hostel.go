package models

import "time"

// Hostel is a residence block.
type Hostel struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Warden    string    `db:"warden" json:"warden"`
	Occupied  int       `db:"occupied" json:"occupied"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// HostelAllocation assigns a student to a hostel room.
type HostelAllocation struct {
	ID          string     `db:"id" json:"id"`
	HostelID    string     `db:"hostel_id" json:"hostelId"`
	StudentID   string     `db:"student_id" json:"studentId"`
	RoomNumber  string     `db:"room_number" json:"roomNumber"`
	AllocatedAt time.Time  `db:"allocated_at" json:"allocatedAt"`
	VacatedAt   *time.Time `db:"vacated_at" json:"vacatedAt,omitempty"`
	Active      bool       `db:"active" json:"active"`
}

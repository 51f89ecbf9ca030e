package realtime

import (
	"context"
	"time"
)

// Event names emitted after mutations.
const (
	EventAttendanceUpdate    = "attendanceUpdate"
	EventAttendanceDeleted   = "attendanceDeleted"
	EventExamCreated         = "examCreated"
	EventExamUpdated         = "examUpdated"
	EventExamDeleted         = "examDeleted"
	EventMarksUpdate         = "marksUpdate"
	EventFinanceUpdate       = "financeUpdate"
	EventScholarshipUpdate   = "scholarshipUpdate"
	EventTimetableUpdate     = "timetableUpdate"
	EventLeaveRequestCreated = "leaveRequestCreated"
	EventLeaveRequestUpdated = "leaveRequestUpdated"
	EventHostelUpdate        = "hostelUpdate"
	EventTransportUpdate     = "transportUpdate"
)

// Event is a named notification carrying the entity returned to the HTTP caller.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Sink receives events for delivery to connected clients.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, event Event) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// NopSink drops every event.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(context.Context, Event) error { return nil }

// NewEvent stamps an event with the current time.
func NewEvent(name string, payload interface{}) Event {
	return Event{Name: name, Payload: payload, At: time.Now().UTC()}
}

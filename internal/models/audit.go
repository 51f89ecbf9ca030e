package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Audit actions.
const (
	AuditActionLogin  = "LOGIN"
	AuditActionDelete = "DELETE"
	AuditActionUpdate = "UPDATE"
	AuditActionExport = "EXPORT"
)

// Audited resources. Scholarship transitions keep their own trail in
// scholarship_audit and are not repeated here.
const (
	AuditResourceUser           = "user"
	AuditResourceAttendance     = "attendance"
	AuditResourceExam           = "exam"
	AuditResourceHallTicket     = "hall_ticket"
	AuditResourceFinance        = "finance"
	AuditResourceHostel         = "hostel"
	AuditResourceTransportRoute = "transport_route"
)

// AuditLog is one row of the audit trail. OldValues and NewValues hold JSON
// snapshots; either may be empty.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  JSONBytes `db:"old_values" json:"oldValues,omitempty"`
	NewValues  JSONBytes `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent  string    `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// JSONBytes is a stored JSON document that marshals as raw JSON instead of
// base64 in API responses.
type JSONBytes []byte

// MarshalJSON implements json.Marshaler.
func (b JSONBytes) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *JSONBytes) UnmarshalJSON(data []byte) error {
	*b = append((*b)[:0], data...)
	return nil
}

// Scan implements sql.Scanner. NULL scans to an empty document.
func (b *JSONBytes) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = nil
	case []byte:
		*b = append(JSONBytes(nil), v...)
	case string:
		*b = JSONBytes(v)
	default:
		return fmt.Errorf("scan JSONBytes from %T", src)
	}
	return nil
}

// Value implements driver.Valuer. Documents are sent as text so postgres
// parses them as JSON; empty documents are stored as NULL.
func (b JSONBytes) Value() (driver.Value, error) {
	if len(b) == 0 {
		return nil, nil
	}
	return string(b), nil
}

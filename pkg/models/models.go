package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// CheckInStatus is the stored state of a CheckIn record. An assignment with
// no CheckIn row is implicitly pending.
type CheckInStatus string

const (
	CheckedIn  CheckInStatus = "CHECKED_IN"
	CheckedOut CheckInStatus = "CHECKED_OUT"
	NoShow     CheckInStatus = "NO_SHOW"
)

// SwapStatus is the lifecycle state of a SwapRequest. Terminal once resolved.
type SwapStatus string

const (
	SwapPending  SwapStatus = "PENDING"
	SwapApproved SwapStatus = "APPROVED"
	SwapDenied   SwapStatus = "DENIED"
)

// AvailabilityStatus makes the default-available policy explicit: Unset means
// the volunteer has expressed no preference and is treated as available.
type AvailabilityStatus string

const (
	Available   AvailabilityStatus = "AVAILABLE"
	Unavailable AvailabilityStatus = "UNAVAILABLE"
	Unset       AvailabilityStatus = "UNSET"
)

// ActionType identifies an offline-queued client action.
type ActionType string

const (
	ActionCheckIn     ActionType = "CHECK_IN"
	ActionCheckOut    ActionType = "CHECK_OUT"
	ActionQuickAlert  ActionType = "QUICK_ALERT"
	ActionMessageRead ActionType = "MESSAGE_READ"
)

// MessageKind distinguishes overseer notices from volunteer quick alerts.
type MessageKind string

const (
	KindAlert  MessageKind = "ALERT"
	KindNotice MessageKind = "NOTICE"
)

// Event is a time-boxed event being staffed.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	StartsOn  time.Time `json:"starts_on"`
	EndsOn    time.Time `json:"ends_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Department groups zones within an event.
type Department struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventID      uint      `gorm:"not null;index" json:"event_id"`
	Name         string    `gorm:"not null" json:"name"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is a volunteer role within an event.
type Role struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	EventID   uint                  `gorm:"not null;index" json:"event_id"`
	Name      string                `gorm:"not null" json:"name"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	DeletedAt soft_delete.DeletedAt `gorm:"softDelete:milli" json:"-"`
}

// Volunteer is a person serving at an event.
type Volunteer struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	EventID      uint                  `gorm:"not null;index" json:"event_id"`
	RoleID       uint                  `gorm:"index" json:"role_id"`
	Name         string                `gorm:"not null" json:"name"`
	Congregation string                `json:"congregation,omitempty"`
	Phone        string                `json:"phone,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	DeletedAt    soft_delete.DeletedAt `gorm:"softDelete:milli" json:"-"`
}

// Session is a discrete time block shared by all zones of an event.
type Session struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	EventID   uint                  `gorm:"not null;index" json:"event_id"`
	Label     string                `json:"label,omitempty"`
	StartsAt  time.Time             `gorm:"not null" json:"starts_at"`
	EndsAt    time.Time             `gorm:"not null" json:"ends_at"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	DeletedAt soft_delete.DeletedAt `gorm:"softDelete:milli" json:"-"`
}

// Zone is a staffing location (post) with a required headcount per session.
type Zone struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	EventID       uint                  `gorm:"not null;index" json:"event_id"`
	DepartmentID  uint                  `gorm:"not null;index" json:"department_id"`
	Name          string                `gorm:"not null" json:"name"`
	RequiredCount int                   `gorm:"default:1" json:"required_count"`
	DisplayOrder  int                   `gorm:"default:0" json:"display_order"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     soft_delete.DeletedAt `gorm:"softDelete:milli" json:"-"`
}

// Assignment binds one volunteer to one zone for one session.
//
// The unique index includes the milli-flag deleted_at column, so exactly one
// live row (deleted_at = 0) can exist per (volunteer, session) while removed
// rows keep distinct tombstones. This is the storage-level guarantee behind
// the no-double-booking invariant; the application pre-check alone would be
// race-prone.
type Assignment struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	EventID     uint                  `gorm:"not null;index" json:"event_id"`
	VolunteerID uint                  `gorm:"not null;uniqueIndex:idx_live_assignment" json:"volunteer_id"`
	SessionID   uint                  `gorm:"not null;uniqueIndex:idx_live_assignment" json:"session_id"`
	ZoneID      uint                  `gorm:"not null;index" json:"zone_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	DeletedAt   soft_delete.DeletedAt `gorm:"softDelete:milli;uniqueIndex:idx_live_assignment" json:"-"`

	Volunteer *Volunteer `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Session   *Session   `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Zone      *Zone      `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

// CheckIn records attendance for a single assignment. At most one live row
// per assignment, enforced the same way as the assignment uniqueness index.
type CheckIn struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	EventID      uint                  `gorm:"not null;index" json:"event_id"`
	AssignmentID uint                  `gorm:"not null;uniqueIndex:idx_live_checkin" json:"assignment_id"`
	VolunteerID  uint                  `gorm:"not null;index" json:"volunteer_id"`
	SessionID    uint                  `gorm:"not null;index" json:"session_id"`
	Status       CheckInStatus         `gorm:"not null" json:"status"`
	CheckInTime  *time.Time            `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time            `json:"check_out_time,omitempty"`
	IsLate       bool                  `json:"is_late"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	DeletedAt    soft_delete.DeletedAt `gorm:"softDelete:milli;uniqueIndex:idx_live_checkin" json:"-"`
}

// SwapRequest proposes removing a volunteer from an assignment, optionally
// suggesting a replacement. Approval deletes the referenced assignment.
type SwapRequest struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	EventID              uint       `gorm:"not null;index" json:"event_id"`
	AssignmentID         uint       `gorm:"not null;index" json:"assignment_id"`
	RequestedByID        uint       `gorm:"not null" json:"requested_by_id"`
	SuggestedVolunteerID *uint      `json:"suggested_volunteer_id,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	Status               SwapStatus `gorm:"not null;default:'PENDING'" json:"status"`
	ResolvedByID         *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AttendanceCount is an aggregate session headcount submitted by an overseer,
// distinct from per-volunteer check-ins. One live record per session.
type AttendanceCount struct {
	ID           uint                  `gorm:"primaryKey" json:"id"`
	EventID      uint                  `gorm:"not null;index" json:"event_id"`
	SessionID    uint                  `gorm:"not null;uniqueIndex:idx_live_attendance" json:"session_id"`
	Count        int                   `gorm:"not null" json:"count"`
	Notes        string                `json:"notes,omitempty"`
	RecordedByID uint                  `json:"recorded_by_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	DeletedAt    soft_delete.DeletedAt `gorm:"softDelete:milli;uniqueIndex:idx_live_attendance" json:"-"`
}

// Availability is an explicit per (volunteer, session) preference. Absence of
// a row means Unset, which the engine treats as available.
type Availability struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	VolunteerID uint               `gorm:"not null;uniqueIndex:idx_vol_session" json:"volunteer_id"`
	SessionID   uint               `gorm:"not null;uniqueIndex:idx_vol_session" json:"session_id"`
	Status      AvailabilityStatus `gorm:"not null;default:'UNSET'" json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Message is an event-scoped notice or quick alert.
type Message struct {
	ID                uint                  `gorm:"primaryKey" json:"id"`
	EventID           uint                  `gorm:"not null;index" json:"event_id"`
	SenderVolunteerID *uint                 `json:"sender_volunteer_id,omitempty"`
	Kind              MessageKind           `gorm:"not null;default:'NOTICE'" json:"kind"`
	Body              string                `gorm:"not null" json:"body"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	DeletedAt         soft_delete.DeletedAt `gorm:"softDelete:milli" json:"-"`
}

// MessageRead is a per-volunteer read receipt.
type MessageRead struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MessageID   uint      `gorm:"not null;uniqueIndex:idx_message_reader" json:"message_id"`
	VolunteerID uint      `gorm:"not null;uniqueIndex:idx_message_reader" json:"volunteer_id"`
	ReadAt      time.Time `json:"read_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// OfflineAction persists a processed client action keyed by its
// client-generated id, so replays can return the original result instead of
// duplicating the effect.
type OfflineAction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ClientID        string     `gorm:"not null;uniqueIndex" json:"client_id"`
	VolunteerID     uint       `gorm:"not null;index" json:"volunteer_id"`
	Type            ActionType `gorm:"not null" json:"type"`
	ClientTimestamp time.Time  `json:"client_timestamp"`
	ResultKind      string     `json:"result_kind"`
	ResultID        uint       `json:"result_id"`
	CreatedAt       time.Time  `json:"created_at"`
}

package models

import "time"

// AssignmentInput is one requested (volunteer, session, zone) binding.
type AssignmentInput struct {
	VolunteerID uint `json:"volunteer_id" binding:"required"`
	SessionID   uint `json:"session_id" binding:"required"`
	ZoneID      uint `json:"zone_id" binding:"required"`
}

// BulkAssignmentInput is a batch of assignment requests, validated and
// written all-or-nothing.
type BulkAssignmentInput struct {
	Items []AssignmentInput `json:"items" binding:"required"`
}

// CoverageCell is one (zone, session) pair with its fill state.
type CoverageCell struct {
	Zone        Zone         `json:"zone"`
	Session     Session      `json:"session"`
	Assignments []Assignment `json:"assignments"`
	Filled      int          `json:"filled"`
	Capacity    int          `json:"capacity"`
	IsFilled    bool         `json:"is_filled"`
}

// CoverageMatrix is the zones-by-sessions view for one department.
type CoverageMatrix struct {
	DepartmentID uint           `json:"department_id"`
	Cells        []CoverageCell `json:"cells"`
}

// GridCell is the zone/session aggregate used by the event-wide grid.
type GridCell struct {
	ZoneID    uint `json:"zone_id"`
	SessionID uint `json:"session_id"`
	Assigned  int  `json:"assigned"`
	Required  int  `json:"required"`
}

// ScheduleGrid aggregates coverage across a whole event.
type ScheduleGrid struct {
	EventID       uint       `json:"event_id"`
	Sessions      []Session  `json:"sessions"`
	Zones         []Zone     `json:"zones"`
	Cells         []GridCell `json:"cells"`
	TotalAssigned int        `json:"total_assigned"`
	TotalRequired int        `json:"total_required"`
	FillPercent   int        `json:"fill_percent"`
}

// ZoneNeed reports a zone still short of volunteers for a session.
type ZoneNeed struct {
	Zone     Zone `json:"zone"`
	Assigned int  `json:"assigned"`
	Required int  `json:"required"`
	Needed   int  `json:"needed"`
}

// SessionSummary lists the zones of one session that still need coverage.
type SessionSummary struct {
	Session Session    `json:"session"`
	Needs   []ZoneNeed `json:"needs"`
}

// AttendanceState is the derived per-assignment state used in summary
// reporting. Missed is never stored; it means the session ended with no
// check-in on record.
type AttendanceState string

const (
	AttendancePending    AttendanceState = "PENDING"
	AttendanceCheckedIn  AttendanceState = "CHECKED_IN"
	AttendanceCheckedOut AttendanceState = "CHECKED_OUT"
	AttendanceNoShow     AttendanceState = "NO_SHOW"
	AttendanceMissed     AttendanceState = "MISSED"
)

// AttendanceEntry pairs an assignment with its derived attendance state.
type AttendanceEntry struct {
	Assignment Assignment      `json:"assignment"`
	CheckIn    *CheckIn        `json:"check_in,omitempty"`
	State      AttendanceState `json:"state"`
}

// SessionAttendanceSummary reports per-volunteer attendance plus the recorded
// aggregate headcount for one session.
type SessionAttendanceSummary struct {
	Session   Session           `json:"session"`
	Entries   []AttendanceEntry `json:"entries"`
	Headcount *AttendanceCount  `json:"headcount,omitempty"`
}

// QueuedAction is one offline-originated client action awaiting replay.
type QueuedAction struct {
	ClientID        string     `json:"client_id"`
	Type            ActionType `json:"type" binding:"required"`
	ClientTimestamp time.Time  `json:"client_timestamp"`
	AssignmentID    uint       `json:"assignment_id,omitempty"`
	MessageID       uint       `json:"message_id,omitempty"`
	Body            string     `json:"body,omitempty"`
}

// ActionResult reports the outcome of replaying one queued action.
type ActionResult struct {
	ClientID   string `json:"client_id"`
	Success    bool   `json:"success"`
	Replayed   bool   `json:"replayed"`
	ResultKind string `json:"result_kind,omitempty"`
	ResultID   uint   `json:"result_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// QueueResult is the per-action result list for one replay batch.
type QueueResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Results   []ActionResult `json:"results"`
}

// EntityDelta holds the created/updated/deleted sets for one entity type.
// Deleted carries ids only; the rows themselves are tombstones.
type EntityDelta[T any] struct {
	Created []T    `json:"created"`
	Updated []T    `json:"updated"`
	Deleted []uint `json:"deleted"`
}

// DeltaResponse is the incremental state transfer for one cursor.
type DeltaResponse struct {
	Since       time.Time               `json:"since"`
	ServerTime  time.Time               `json:"server_time"`
	Sessions    EntityDelta[Session]    `json:"sessions"`
	Zones       EntityDelta[Zone]       `json:"zones"`
	Assignments EntityDelta[Assignment] `json:"assignments"`
	CheckIns    EntityDelta[CheckIn]    `json:"check_ins"`
	Messages    EntityDelta[Message]    `json:"messages"`
	Volunteers  EntityDelta[Volunteer]  `json:"volunteers"`
	Roles       EntityDelta[Role]       `json:"roles"`
}

// FullSyncResponse is the complete live snapshot for a first sync.
type FullSyncResponse struct {
	ServerTime  time.Time    `json:"server_time"`
	Sessions    []Session    `json:"sessions"`
	Zones       []Zone       `json:"zones"`
	Assignments []Assignment `json:"assignments"`
	CheckIns    []CheckIn    `json:"check_ins"`
	Messages    []Message    `json:"messages"`
	Volunteers  []Volunteer  `json:"volunteers"`
	Roles       []Role       `json:"roles"`
}

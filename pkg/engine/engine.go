package engine

import (
	"time"

	"gorm.io/gorm"
)

// Options tunes engine behavior.
type Options struct {
	// LateThreshold is the grace period after session start before a
	// check-in is flagged late.
	LateThreshold time.Duration
	// Now supplies the clock; tests inject a fixed one.
	Now func() time.Time
}

// DefaultLateThreshold is used when Options leaves LateThreshold zero.
const DefaultLateThreshold = 5 * time.Minute

// Engine bundles the coordination services over one database.
type Engine struct {
	Assignments  *AssignmentService
	Availability *AvailabilityService
	Coverage     *CoverageService
	Attendance   *AttendanceService
	Swaps        *SwapService
	Sync         *SyncService
}

// New wires every service against db.
func New(db *gorm.DB, opts Options) *Engine {
	if opts.LateThreshold <= 0 {
		opts.LateThreshold = DefaultLateThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	availability := &AvailabilityService{db: db}
	assignments := &AssignmentService{db: db, availability: availability}
	attendance := &AttendanceService{db: db, lateThreshold: opts.LateThreshold, now: opts.Now}

	return &Engine{
		Assignments:  assignments,
		Availability: availability,
		Coverage:     &CoverageService{db: db},
		Attendance:   attendance,
		Swaps:        &SwapService{db: db, now: opts.Now},
		Sync:         &SyncService{db: db, attendance: attendance, now: opts.Now},
	}
}

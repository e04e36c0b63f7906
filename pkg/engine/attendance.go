package engine

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// AttendanceService drives check-in state transitions and session headcounts.
//
// Stored states per assignment: none (pending) -> CHECKED_IN -> CHECKED_OUT,
// or none -> NO_SHOW (terminal). MISSED is derived in summaries only, never
// stored.
type AttendanceService struct {
	db            *gorm.DB
	lateThreshold time.Duration
	now           func() time.Time
}

// CheckInVolunteer checks a volunteer in to their own next assignment: the
// earliest-starting session that has not ended and has no check-in yet.
func (s *AttendanceService) CheckInVolunteer(volunteerID uint) (*models.CheckIn, error) {
	return s.checkInVolunteerAt(volunteerID, s.now())
}

func (s *AttendanceService) checkInVolunteerAt(volunteerID uint, at time.Time) (*models.CheckIn, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Session").
		Where("volunteer_id = ?", volunteerID).Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, newError(KindNotFound, CodeNoAssignment,
			"volunteer %d has no assignments", volunteerID).withPair(volunteerID, 0)
	}

	assignmentIDs := make([]uint, len(assignments))
	for i, a := range assignments {
		assignmentIDs[i] = a.ID
	}
	var existing []models.CheckIn
	if err := s.db.Where("assignment_id IN ?", assignmentIDs).Find(&existing).Error; err != nil {
		return nil, err
	}
	hasCheckIn := make(map[uint]bool, len(existing))
	activeElsewhere := false
	for _, c := range existing {
		hasCheckIn[c.AssignmentID] = true
		if c.Status == models.CheckedIn {
			activeElsewhere = true
		}
	}

	var target *models.Assignment
	for i := range assignments {
		a := &assignments[i]
		if a.Session == nil || !a.Session.EndsAt.After(at) {
			continue
		}
		if hasCheckIn[a.ID] {
			continue
		}
		if target == nil || a.Session.StartsAt.Before(target.Session.StartsAt) {
			target = a
		}
	}
	if target == nil {
		if activeElsewhere {
			return nil, conflict(CodeAlreadyCheckedIn,
				"volunteer %d is already checked in", volunteerID).withPair(volunteerID, 0)
		}
		return nil, conflict(CodeNoEligibleAssignment,
			"volunteer %d has no assignment open for check-in", volunteerID).withPair(volunteerID, 0)
	}

	return s.createCheckIn(target, at, nil, "")
}

// AdminCheckInOptions tunes an admin-side check-in.
type AdminCheckInOptions struct {
	// At overrides the check-in time; zero means now.
	At time.Time
	// OverrideLate forces the lateness flag instead of computing it.
	OverrideLate *bool
	Notes        string
}

// AdminCheckIn checks in any assignment, bypassing the own-assignment
// selection but keeping the no-existing-check-in guard.
func (s *AttendanceService) AdminCheckIn(assignmentID uint, opts AdminCheckInOptions) (*models.CheckIn, error) {
	assignment, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoCheckIn(assignmentID); err != nil {
		return nil, err
	}
	at := opts.At
	if at.IsZero() {
		at = s.now()
	}
	return s.createCheckIn(assignment, at, opts.OverrideLate, opts.Notes)
}

func (s *AttendanceService) createCheckIn(assignment *models.Assignment, at time.Time, overrideLate *bool, notes string) (*models.CheckIn, error) {
	isLate := at.After(assignment.Session.StartsAt.Add(s.lateThreshold))
	if overrideLate != nil {
		isLate = *overrideLate
	}

	checkIn := models.CheckIn{
		EventID:      assignment.EventID,
		AssignmentID: assignment.ID,
		VolunteerID:  assignment.VolunteerID,
		SessionID:    assignment.SessionID,
		Status:       models.CheckedIn,
		CheckInTime:  &at,
		IsLate:       isLate,
		Notes:        notes,
	}
	if err := s.db.Create(&checkIn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(CodeAlreadyCheckedIn,
				"assignment %d already has a check-in", assignment.ID).
				withPair(assignment.VolunteerID, assignment.SessionID)
		}
		return nil, err
	}
	return &checkIn, nil
}

// CheckOutVolunteer completes the volunteer's active check-in.
func (s *AttendanceService) CheckOutVolunteer(volunteerID uint) (*models.CheckIn, error) {
	return s.checkOutVolunteerAt(volunteerID, s.now())
}

func (s *AttendanceService) checkOutVolunteerAt(volunteerID uint, at time.Time) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := s.db.Where("volunteer_id = ? AND status = ?", volunteerID, models.CheckedIn).
		Order("check_in_time desc").First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var done int64
		if err := s.db.Model(&models.CheckIn{}).
			Where("volunteer_id = ? AND status = ?", volunteerID, models.CheckedOut).
			Count(&done).Error; err != nil {
			return nil, err
		}
		if done > 0 {
			return nil, conflict(CodeAlreadyCheckedOut,
				"volunteer %d has already checked out", volunteerID).withPair(volunteerID, 0)
		}
		return nil, conflict(CodeNotCheckedIn,
			"volunteer %d is not checked in", volunteerID).withPair(volunteerID, 0)
	}
	if err != nil {
		return nil, err
	}

	// Guarded update so two concurrent check-outs cannot both succeed.
	result := s.db.Model(&models.CheckIn{}).
		Where("id = ? AND status = ?", checkIn.ID, models.CheckedIn).
		Updates(map[string]any{"status": models.CheckedOut, "check_out_time": at})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, conflict(CodeAlreadyCheckedOut,
			"volunteer %d has already checked out", volunteerID).withPair(volunteerID, 0)
	}

	if err := s.db.First(&checkIn, checkIn.ID).Error; err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// MarkNoShow records a terminal NO_SHOW for an assignment with no check-in.
// Undoing it requires deleting the record first.
func (s *AttendanceService) MarkNoShow(assignmentID uint, notes string) (*models.CheckIn, error) {
	assignment, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoCheckIn(assignmentID); err != nil {
		return nil, err
	}

	checkIn := models.CheckIn{
		EventID:      assignment.EventID,
		AssignmentID: assignment.ID,
		VolunteerID:  assignment.VolunteerID,
		SessionID:    assignment.SessionID,
		Status:       models.NoShow,
		Notes:        notes,
	}
	if err := s.db.Create(&checkIn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(CodeAlreadyCheckedIn,
				"assignment %d already has a check-in", assignmentID).
				withPair(assignment.VolunteerID, assignment.SessionID)
		}
		return nil, err
	}
	return &checkIn, nil
}

// DeleteCheckIn soft-deletes a check-in record.
func (s *AttendanceService) DeleteCheckIn(checkInID uint) error {
	result := s.db.Delete(&models.CheckIn{}, checkInID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("check-in %d not found", checkInID)
	}
	return nil
}

// RecordAttendance stores the aggregate headcount for a session, exactly
// once. Corrections go through UpdateAttendance.
func (s *AttendanceService) RecordAttendance(sessionID uint, count int, notes string, recordedBy uint) (*models.AttendanceCount, error) {
	if count < 0 {
		return nil, invalid("attendance count cannot be negative")
	}
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session %d not found", sessionID)
		}
		return nil, err
	}

	record := models.AttendanceCount{
		EventID:      session.EventID,
		SessionID:    sessionID,
		Count:        count,
		Notes:        notes,
		RecordedByID: recordedBy,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflict(CodeAlreadyRecorded,
				"attendance for session %d is already recorded", sessionID)
		}
		return nil, err
	}
	return &record, nil
}

// UpdateAttendance corrects a previously recorded headcount. The correction
// replaces both count and notes, so an empty notes value clears the old text.
func (s *AttendanceService) UpdateAttendance(sessionID uint, count int, notes string) (*models.AttendanceCount, error) {
	if count < 0 {
		return nil, invalid("attendance count cannot be negative")
	}
	var record models.AttendanceCount
	err := s.db.Where("session_id = ?", sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("no attendance recorded for session %d", sessionID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&record).Updates(map[string]any{
		"count": count,
		"notes": notes,
	}).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteAttendance removes the recorded headcount for a session.
func (s *AttendanceService) DeleteAttendance(sessionID uint) error {
	result := s.db.Where("session_id = ?", sessionID).Delete(&models.AttendanceCount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("no attendance recorded for session %d", sessionID)
	}
	return nil
}

// SessionAttendanceSummary reports the derived attendance state of every
// assignment in a session plus the recorded headcount, if any. An assignment
// with no check-in counts as MISSED once the session has ended.
func (s *AttendanceService) SessionAttendanceSummary(sessionID uint) (*models.SessionAttendanceSummary, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session %d not found", sessionID)
		}
		return nil, err
	}

	var assignments []models.Assignment
	err := s.db.Preload("Volunteer").Preload("Zone").
		Where("session_id = ?", sessionID).Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	var checkIns []models.CheckIn
	if err := s.db.Where("session_id = ?", sessionID).Find(&checkIns).Error; err != nil {
		return nil, err
	}
	byAssignment := make(map[uint]*models.CheckIn, len(checkIns))
	for i := range checkIns {
		byAssignment[checkIns[i].AssignmentID] = &checkIns[i]
	}

	ended := s.now().After(session.EndsAt)
	summary := &models.SessionAttendanceSummary{Session: session, Entries: []models.AttendanceEntry{}}
	for _, assignment := range assignments {
		entry := models.AttendanceEntry{Assignment: assignment}
		if checkIn := byAssignment[assignment.ID]; checkIn != nil {
			entry.CheckIn = checkIn
			switch checkIn.Status {
			case models.CheckedIn:
				entry.State = models.AttendanceCheckedIn
			case models.CheckedOut:
				entry.State = models.AttendanceCheckedOut
			case models.NoShow:
				entry.State = models.AttendanceNoShow
			}
		} else if ended {
			entry.State = models.AttendanceMissed
		} else {
			entry.State = models.AttendancePending
		}
		summary.Entries = append(summary.Entries, entry)
	}

	var headcount models.AttendanceCount
	err = s.db.Where("session_id = ?", sessionID).First(&headcount).Error
	if err == nil {
		summary.Headcount = &headcount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return summary, nil
}

func (s *AttendanceService) loadAssignment(assignmentID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := s.db.Preload("Session").First(&assignment, assignmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("assignment %d not found", assignmentID)
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *AttendanceService) ensureNoCheckIn(assignmentID uint) error {
	var count int64
	if err := s.db.Model(&models.CheckIn{}).
		Where("assignment_id = ?", assignmentID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict(CodeAlreadyCheckedIn, "assignment %d already has a check-in", assignmentID)
	}
	return nil
}

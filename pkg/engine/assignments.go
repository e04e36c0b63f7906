package engine

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// MaxBulkItems caps a single bulk-create batch.
const MaxBulkItems = 100

// AssignmentService validates and creates assignments. The one-live-row
// uniqueness per (volunteer, session) is enforced twice: an eager pre-check
// for a useful error, and the storage unique index for the concurrent case.
type AssignmentService struct {
	db           *gorm.DB
	availability *AvailabilityService
}

type pairKey struct {
	volunteerID uint
	sessionID   uint
}

// Create validates and writes a single assignment.
func (s *AssignmentService) Create(eventID uint, in models.AssignmentInput) (*models.Assignment, error) {
	if err := s.validate(s.db, eventID, in, -1); err != nil {
		return nil, err
	}

	assignment := models.Assignment{
		EventID:     eventID,
		VolunteerID: in.VolunteerID,
		SessionID:   in.SessionID,
		ZoneID:      in.ZoneID,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent create for the same pair.
			return nil, conflict(CodeVolunteerAlreadyAssigned,
				"volunteer %d is already assigned in session %d", in.VolunteerID, in.SessionID).
				withPair(in.VolunteerID, in.SessionID)
		}
		return nil, err
	}

	if err := s.db.Preload("Volunteer").Preload("Session").Preload("Zone").
		First(&assignment, assignment.ID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// BulkCreate validates the whole batch before writing any row, then writes
// all rows in one transaction. A duplicate (volunteer, session) pair inside
// the batch is reported as DuplicateInRequest with the offending position; a
// duplicate against stored assignments as VolunteerAlreadyAssigned.
func (s *AssignmentService) BulkCreate(eventID uint, items []models.AssignmentInput) ([]models.Assignment, error) {
	if len(items) == 0 {
		return nil, invalid("bulk create requires at least one item")
	}
	if len(items) > MaxBulkItems {
		return nil, invalid("bulk create accepts at most %d items, got %d", MaxBulkItems, len(items))
	}

	seen := make(map[pairKey]int, len(items))
	for i, item := range items {
		key := pairKey{item.VolunteerID, item.SessionID}
		if first, dup := seen[key]; dup {
			return nil, newError(KindValidation, CodeDuplicateInRequest,
				"items %d and %d both assign volunteer %d in session %d",
				first, i, item.VolunteerID, item.SessionID).
				withPair(item.VolunteerID, item.SessionID).withIndex(i)
		}
		seen[key] = i

		if err := s.validate(s.db, eventID, item, i); err != nil {
			return nil, err
		}
	}

	rows := make([]models.Assignment, len(items))
	for i, item := range items {
		rows[i] = models.Assignment{
			EventID:     eventID,
			VolunteerID: item.VolunteerID,
			SessionID:   item.SessionID,
			ZoneID:      item.ZoneID,
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent create slipped in between validation and the
			// batch write; the whole batch rolls back.
			return nil, conflict(CodeVolunteerAlreadyAssigned,
				"a volunteer in the batch was concurrently assigned")
		}
		return nil, err
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var created []models.Assignment
	if err := s.db.Preload("Volunteer").Preload("Session").Preload("Zone").
		Where("id IN ?", ids).Find(&created).Error; err != nil {
		return nil, err
	}
	sortForDisplay(created)
	return created, nil
}

// validate runs the check order for one item: existence and event
// scope, then availability, then uniqueness against live assignments.
func (s *AssignmentService) validate(tx *gorm.DB, eventID uint, in models.AssignmentInput, index int) error {
	var volunteer models.Volunteer
	if err := tx.Where("id = ? AND event_id = ?", in.VolunteerID, eventID).First(&volunteer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("volunteer %d not found in event %d", in.VolunteerID, eventID).
				withPair(in.VolunteerID, in.SessionID).withIndex(index)
		}
		return err
	}
	var session models.Session
	if err := tx.Where("id = ? AND event_id = ?", in.SessionID, eventID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("session %d not found in event %d", in.SessionID, eventID).
				withPair(in.VolunteerID, in.SessionID).withIndex(index)
		}
		return err
	}
	var zone models.Zone
	if err := tx.Where("id = ? AND event_id = ?", in.ZoneID, eventID).First(&zone).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("zone %d not found in event %d", in.ZoneID, eventID).
				withPair(in.VolunteerID, in.SessionID).withIndex(index)
		}
		return err
	}

	blocked, err := s.availability.IsUnavailable(in.VolunteerID, in.SessionID)
	if err != nil {
		return err
	}
	if blocked {
		return unavailable("%s is marked unavailable for session %d", volunteer.Name, in.SessionID).
			withPair(in.VolunteerID, in.SessionID).withIndex(index)
	}

	var count int64
	if err := tx.Model(&models.Assignment{}).
		Where("volunteer_id = ? AND session_id = ?", in.VolunteerID, in.SessionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict(CodeVolunteerAlreadyAssigned,
			"%s is already assigned in session %d", volunteer.Name, in.SessionID).
			withPair(in.VolunteerID, in.SessionID).withIndex(index)
	}
	return nil
}

// Remove soft-deletes an assignment.
func (s *AssignmentService) Remove(assignmentID uint) error {
	result := s.db.Delete(&models.Assignment{}, assignmentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("assignment %d not found", assignmentID)
	}
	return nil
}

// Get returns one live assignment with its references loaded.
func (s *AssignmentService) Get(assignmentID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := s.db.Preload("Volunteer").Preload("Session").Preload("Zone").
		First(&assignment, assignmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("assignment %d not found", assignmentID)
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListForEvent returns every live assignment of an event in display order.
func (s *AssignmentService) ListForEvent(eventID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Volunteer").Preload("Session").Preload("Zone").
		Where("event_id = ?", eventID).Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	sortForDisplay(assignments)
	return assignments, nil
}

// ListForVolunteer returns a volunteer's live assignments ordered by session
// start.
func (s *AssignmentService) ListForVolunteer(volunteerID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Session").Preload("Zone").
		Where("volunteer_id = ?", volunteerID).Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	sort.Slice(assignments, func(i, j int) bool {
		si, sj := assignments[i].Session, assignments[j].Session
		if si == nil || sj == nil {
			return assignments[i].ID < assignments[j].ID
		}
		return si.StartsAt.Before(sj.StartsAt)
	})
	return assignments, nil
}

// sortForDisplay orders assignments by session start, then zone display
// order, then volunteer name. Presentation only; no decision depends on it.
func sortForDisplay(assignments []models.Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.Session != nil && b.Session != nil && !a.Session.StartsAt.Equal(b.Session.StartsAt) {
			return a.Session.StartsAt.Before(b.Session.StartsAt)
		}
		if a.Zone != nil && b.Zone != nil && a.Zone.DisplayOrder != b.Zone.DisplayOrder {
			return a.Zone.DisplayOrder < b.Zone.DisplayOrder
		}
		if a.Volunteer != nil && b.Volunteer != nil && a.Volunteer.Name != b.Volunteer.Name {
			return a.Volunteer.Name < b.Volunteer.Name
		}
		return a.ID < b.ID
	})
}

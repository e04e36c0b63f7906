package engine

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// AvailabilityService stores explicit per (volunteer, session) availability.
// Absence of a record means Unset, which every consumer treats as available.
type AvailabilityService struct {
	db *gorm.DB
}

// Set upserts the availability status for one volunteer and session.
func (s *AvailabilityService) Set(volunteerID, sessionID uint, status models.AvailabilityStatus) (*models.Availability, error) {
	switch status {
	case models.Available, models.Unavailable, models.Unset:
	default:
		return nil, invalid("unknown availability status %q", status)
	}

	record := models.Availability{
		VolunteerID: volunteerID,
		SessionID:   sessionID,
		Status:      status,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "volunteer_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, err
	}

	// Re-read so callers see the canonical row after an upsert.
	if err := s.db.Where("volunteer_id = ? AND session_id = ?", volunteerID, sessionID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns the explicit status for the pair, or Unset when no record
// exists.
func (s *AvailabilityService) Get(volunteerID, sessionID uint) (models.AvailabilityStatus, error) {
	var record models.Availability
	err := s.db.Where("volunteer_id = ? AND session_id = ?", volunteerID, sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Unset, nil
	}
	if err != nil {
		return models.Unset, err
	}
	return record.Status, nil
}

// IsUnavailable reports whether an explicit UNAVAILABLE record exists.
func (s *AvailabilityService) IsUnavailable(volunteerID, sessionID uint) (bool, error) {
	status, err := s.Get(volunteerID, sessionID)
	if err != nil {
		return false, err
	}
	return status == models.Unavailable, nil
}

// ListForSession returns every explicit record for one session.
func (s *AvailabilityService) ListForSession(sessionID uint) ([]models.Availability, error) {
	var records []models.Availability
	if err := s.db.Where("session_id = ?", sessionID).Order("volunteer_id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

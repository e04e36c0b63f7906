package engine

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// SwapService creates and resolves reassignment requests. Approval removes
// the original assignment in the same transaction as the status flip, so no
// half-approved state is ever observable.
type SwapService struct {
	db  *gorm.DB
	now func() time.Time
}

// Create opens a swap request for a live assignment. A suggested replacement
// volunteer must belong to the same event, must not be marked unavailable for
// the session, and must not already hold an assignment in that session.
func (s *SwapService) Create(assignmentID, requestedBy uint, suggestedVolunteerID *uint, reason string) (*models.SwapRequest, error) {
	var request models.SwapRequest

	// Check and insert run in one transaction so two concurrent requests
	// for the same assignment cannot both pass the pending check.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		err := tx.First(&assignment, assignmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("assignment %d not found", assignmentID)
		}
		if err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.SwapRequest{}).
			Where("assignment_id = ? AND status = ?", assignmentID, models.SwapPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return conflict(CodeDuplicatePendingSwap,
				"assignment %d already has a pending swap request", assignmentID)
		}

		if suggestedVolunteerID != nil {
			if err := s.validateSuggestion(tx, &assignment, *suggestedVolunteerID); err != nil {
				return err
			}
		}

		request = models.SwapRequest{
			EventID:              assignment.EventID,
			AssignmentID:         assignmentID,
			RequestedByID:        requestedBy,
			SuggestedVolunteerID: suggestedVolunteerID,
			Reason:               reason,
			Status:               models.SwapPending,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *SwapService) validateSuggestion(tx *gorm.DB, assignment *models.Assignment, volunteerID uint) error {
	var volunteer models.Volunteer
	err := tx.Where("id = ? AND event_id = ?", volunteerID, assignment.EventID).
		First(&volunteer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("suggested volunteer %d not found in event %d", volunteerID, assignment.EventID).
			withPair(volunteerID, assignment.SessionID)
	}
	if err != nil {
		return err
	}

	availability := &AvailabilityService{db: tx}
	blocked, err := availability.IsUnavailable(volunteerID, assignment.SessionID)
	if err != nil {
		return err
	}
	if blocked {
		return unavailable("%s is marked unavailable for session %d", volunteer.Name, assignment.SessionID).
			withPair(volunteerID, assignment.SessionID)
	}

	var count int64
	if err := tx.Model(&models.Assignment{}).
		Where("volunteer_id = ? AND session_id = ?", volunteerID, assignment.SessionID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict(CodeVolunteerAlreadyAssigned,
			"%s is already assigned in session %d", volunteer.Name, assignment.SessionID).
			withPair(volunteerID, assignment.SessionID)
	}
	return nil
}

// Approve resolves a pending request and deletes its assignment atomically.
// A request resolved by anyone else first fails with AlreadyResolved.
func (s *SwapService) Approve(requestID, resolvedBy uint) (*models.SwapRequest, error) {
	return s.resolve(requestID, resolvedBy, models.SwapApproved)
}

// Deny resolves a pending request, leaving the assignment untouched.
func (s *SwapService) Deny(requestID, resolvedBy uint) (*models.SwapRequest, error) {
	return s.resolve(requestID, resolvedBy, models.SwapDenied)
}

func (s *SwapService) resolve(requestID, resolvedBy uint, outcome models.SwapStatus) (*models.SwapRequest, error) {
	var request models.SwapRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("swap request %d not found", requestID)
			}
			return err
		}
		if request.Status != models.SwapPending {
			return conflict(CodeAlreadyResolved,
				"swap request %d was already resolved as %s", requestID, request.Status)
		}

		now := s.now()
		// The status guard makes a concurrent resolution lose cleanly
		// instead of double-applying.
		result := tx.Model(&models.SwapRequest{}).
			Where("id = ? AND status = ?", requestID, models.SwapPending).
			Updates(map[string]any{
				"status":         outcome,
				"resolved_by_id": resolvedBy,
				"resolved_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflict(CodeAlreadyResolved, "swap request %d was already resolved", requestID)
		}

		if outcome == models.SwapApproved {
			if err := tx.Delete(&models.Assignment{}, request.AssignmentID).Error; err != nil {
				return err
			}
		}

		return tx.First(&request, requestID).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Get returns one swap request.
func (s *SwapService) Get(requestID uint) (*models.SwapRequest, error) {
	var request models.SwapRequest
	err := s.db.First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("swap request %d not found", requestID)
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPending returns an event's unresolved requests, oldest first.
func (s *SwapService) ListPending(eventID uint) ([]models.SwapRequest, error) {
	var requests []models.SwapRequest
	err := s.db.Where("event_id = ? AND status = ?", eventID, models.SwapPending).
		Order("created_at, id").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

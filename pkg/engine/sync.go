package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// SyncService produces incremental and full state transfers for offline
// clients and replays their queued actions idempotently.
type SyncService struct {
	db         *gorm.DB
	attendance *AttendanceService
	now        func() time.Time
}

// deltaFor classifies one entity type against the cursor: created when
// createdAt > since, updated when createdAt <= since < updatedAt, deleted
// when the tombstone is newer than the cursor. Soft-deleted rows never
// appear in created or updated; the default query scope excludes them.
func deltaFor[T any](db *gorm.DB, eventID uint, since time.Time) (models.EntityDelta[T], error) {
	delta := models.EntityDelta[T]{
		Created: []T{},
		Updated: []T{},
		Deleted: []uint{},
	}

	if err := db.Where("event_id = ? AND created_at > ?", eventID, since).
		Order("id").Find(&delta.Created).Error; err != nil {
		return delta, err
	}
	if err := db.Where("event_id = ? AND created_at <= ? AND updated_at > ?", eventID, since, since).
		Order("id").Find(&delta.Updated).Error; err != nil {
		return delta, err
	}
	// Live rows carry deleted_at = 0, so a cursor before the epoch must not
	// match them; only real tombstones count.
	if err := db.Unscoped().Model(new(T)).
		Where("event_id = ? AND deleted_at > 0 AND deleted_at > ?", eventID, since.UnixMilli()).
		Order("id").Pluck("id", &delta.Deleted).Error; err != nil {
		return delta, err
	}
	return delta, nil
}

// Delta returns everything that changed in the event since the cursor.
func (s *SyncService) Delta(eventID uint, since time.Time) (*models.DeltaResponse, error) {
	resp := &models.DeltaResponse{Since: since, ServerTime: s.now()}

	var err error
	if resp.Sessions, err = deltaFor[models.Session](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.Zones, err = deltaFor[models.Zone](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.Assignments, err = deltaFor[models.Assignment](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.CheckIns, err = deltaFor[models.CheckIn](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.Messages, err = deltaFor[models.Message](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.Volunteers, err = deltaFor[models.Volunteer](s.db, eventID, since); err != nil {
		return nil, err
	}
	if resp.Roles, err = deltaFor[models.Role](s.db, eventID, since); err != nil {
		return nil, err
	}
	return resp, nil
}

// Full returns the complete live snapshot of every syncable type. ServerTime
// is the cursor for the client's next delta.
func (s *SyncService) Full(eventID uint) (*models.FullSyncResponse, error) {
	resp := &models.FullSyncResponse{
		ServerTime:  s.now(),
		Sessions:    []models.Session{},
		Zones:       []models.Zone{},
		Assignments: []models.Assignment{},
		CheckIns:    []models.CheckIn{},
		Messages:    []models.Message{},
		Volunteers:  []models.Volunteer{},
		Roles:       []models.Role{},
	}

	scope := func(dest any) error {
		return s.db.Where("event_id = ?", eventID).Order("id").Find(dest).Error
	}
	if err := scope(&resp.Sessions); err != nil {
		return nil, err
	}
	if err := scope(&resp.Zones); err != nil {
		return nil, err
	}
	if err := scope(&resp.Assignments); err != nil {
		return nil, err
	}
	if err := scope(&resp.CheckIns); err != nil {
		return nil, err
	}
	if err := scope(&resp.Messages); err != nil {
		return nil, err
	}
	if err := scope(&resp.Volunteers); err != nil {
		return nil, err
	}
	if err := scope(&resp.Roles); err != nil {
		return nil, err
	}
	return resp, nil
}

// ProcessQueue replays a batch of offline actions. Each action runs in its
// own transaction; one failure does not abort the batch. The client id is a
// persisted idempotency key, so a resubmitted action returns the original
// result instead of duplicating its effect.
func (s *SyncService) ProcessQueue(volunteerID uint, actions []models.QueuedAction) *models.QueueResult {
	result := &models.QueueResult{Results: make([]models.ActionResult, 0, len(actions))}
	for _, action := range actions {
		outcome := s.processAction(volunteerID, action)
		if outcome.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, outcome)
	}
	return result
}

func (s *SyncService) processAction(volunteerID uint, action models.QueuedAction) models.ActionResult {
	clientID := action.ClientID
	if clientID == "" {
		// No key from the client; give the record one so it still
		// persists, though the client cannot replay it by id.
		clientID = uuid.NewString()
	}

	var recorded models.OfflineAction
	err := s.db.Where("client_id = ?", clientID).First(&recorded).Error
	if err == nil {
		return models.ActionResult{
			ClientID:   action.ClientID,
			Success:    true,
			Replayed:   true,
			ResultKind: recorded.ResultKind,
			ResultID:   recorded.ResultID,
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return failure(action.ClientID, err)
	}

	at := action.ClientTimestamp
	if at.IsZero() {
		at = s.now()
	}

	var kind string
	var resultID uint
	replayed := false

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		switch action.Type {
		case models.ActionCheckIn:
			kind = "check_in"
			resultID, replayed, txErr = s.applyCheckIn(tx, volunteerID, action, at)
		case models.ActionCheckOut:
			kind = "check_in"
			resultID, replayed, txErr = s.applyCheckOut(tx, volunteerID, at)
		case models.ActionQuickAlert:
			kind = "message"
			resultID, txErr = s.applyQuickAlert(tx, volunteerID, action)
		case models.ActionMessageRead:
			kind = "message_read"
			resultID, replayed, txErr = s.applyMessageRead(tx, volunteerID, action, at)
		default:
			return invalid("unknown action type %q", action.Type)
		}
		if txErr != nil {
			return txErr
		}

		record := models.OfflineAction{
			ClientID:        clientID,
			VolunteerID:     volunteerID,
			Type:            action.Type,
			ClientTimestamp: at,
			ResultKind:      kind,
			ResultID:        resultID,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent submission of the same client id won; report
			// its recorded result.
			if s.db.Where("client_id = ?", clientID).First(&recorded).Error == nil {
				return models.ActionResult{
					ClientID:   action.ClientID,
					Success:    true,
					Replayed:   true,
					ResultKind: recorded.ResultKind,
					ResultID:   recorded.ResultID,
				}
			}
		}
		return failure(action.ClientID, err)
	}

	return models.ActionResult{
		ClientID:   action.ClientID,
		Success:    true,
		Replayed:   replayed,
		ResultKind: kind,
		ResultID:   resultID,
	}
}

// applyCheckIn performs an offline check-in at the client timestamp. If the
// effect already exists - an active check-in for the same assignment or
// volunteer - it resolves to the existing record instead of erroring.
func (s *SyncService) applyCheckIn(tx *gorm.DB, volunteerID uint, action models.QueuedAction, at time.Time) (uint, bool, error) {
	att := &AttendanceService{db: tx, lateThreshold: s.attendance.lateThreshold, now: s.attendance.now}

	if action.AssignmentID != 0 {
		var assignment models.Assignment
		err := tx.Preload("Session").
			Where("id = ? AND volunteer_id = ?", action.AssignmentID, volunteerID).
			First(&assignment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, notFound("assignment %d not found for volunteer %d", action.AssignmentID, volunteerID)
		}
		if err != nil {
			return 0, false, err
		}

		var existing models.CheckIn
		if tx.Where("assignment_id = ?", assignment.ID).First(&existing).Error == nil {
			return existing.ID, true, nil
		}
		checkIn, err := att.createCheckIn(&assignment, at, nil, "")
		if err != nil {
			return 0, false, err
		}
		return checkIn.ID, false, nil
	}

	checkIn, err := att.checkInVolunteerAt(volunteerID, at)
	if err != nil {
		if code, ok := ErrCode(err); ok && code == CodeAlreadyCheckedIn {
			var existing models.CheckIn
			if tx.Where("volunteer_id = ? AND status = ?", volunteerID, models.CheckedIn).
				Order("check_in_time desc").First(&existing).Error == nil {
				return existing.ID, true, nil
			}
		}
		return 0, false, err
	}
	return checkIn.ID, false, nil
}

func (s *SyncService) applyCheckOut(tx *gorm.DB, volunteerID uint, at time.Time) (uint, bool, error) {
	att := &AttendanceService{db: tx, lateThreshold: s.attendance.lateThreshold, now: s.attendance.now}

	checkIn, err := att.checkOutVolunteerAt(volunteerID, at)
	if err != nil {
		if code, ok := ErrCode(err); ok && code == CodeAlreadyCheckedOut {
			var existing models.CheckIn
			if tx.Where("volunteer_id = ? AND status = ?", volunteerID, models.CheckedOut).
				Order("check_out_time desc").First(&existing).Error == nil {
				return existing.ID, true, nil
			}
		}
		return 0, false, err
	}
	return checkIn.ID, false, nil
}

func (s *SyncService) applyQuickAlert(tx *gorm.DB, volunteerID uint, action models.QueuedAction) (uint, error) {
	if action.Body == "" {
		return 0, invalid("quick alert requires a body")
	}
	var volunteer models.Volunteer
	if err := tx.First(&volunteer, volunteerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, notFound("volunteer %d not found", volunteerID)
		}
		return 0, err
	}

	message := models.Message{
		EventID:           volunteer.EventID,
		SenderVolunteerID: &volunteer.ID,
		Kind:              models.KindAlert,
		Body:              action.Body,
	}
	if err := tx.Create(&message).Error; err != nil {
		return 0, err
	}
	return message.ID, nil
}

func (s *SyncService) applyMessageRead(tx *gorm.DB, volunteerID uint, action models.QueuedAction, at time.Time) (uint, bool, error) {
	if action.MessageID == 0 {
		return 0, false, invalid("message read requires a message id")
	}
	var message models.Message
	if err := tx.First(&message, action.MessageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, notFound("message %d not found", action.MessageID)
		}
		return 0, false, err
	}

	var existing models.MessageRead
	if tx.Where("message_id = ? AND volunteer_id = ?", action.MessageID, volunteerID).
		First(&existing).Error == nil {
		return existing.ID, true, nil
	}

	read := models.MessageRead{
		MessageID:   action.MessageID,
		VolunteerID: volunteerID,
		ReadAt:      at,
	}
	if err := tx.Create(&read).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if tx.Where("message_id = ? AND volunteer_id = ?", action.MessageID, volunteerID).
				First(&existing).Error == nil {
				return existing.ID, true, nil
			}
		}
		return 0, false, err
	}
	return read.ID, false, nil
}

func failure(clientID string, err error) models.ActionResult {
	return models.ActionResult{ClientID: clientID, Success: false, Error: err.Error()}
}

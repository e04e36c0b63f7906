package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

func TestDelta_Classification(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()
	since := time.Now().Add(-30 * time.Minute)

	// Created after the cursor.
	created := f.assign(t, f.alice, f.morning, f.gate)

	// Created before the cursor, updated after it.
	updated := f.assign(t, f.bob, f.morning, f.gate)
	require.NoError(t, f.db.Model(&models.Assignment{}).Where("id = ?", updated.ID).
		UpdateColumn("created_at", since.Add(-time.Hour)).Error)
	require.NoError(t, f.db.Model(&models.Assignment{}).Where("id = ?", updated.ID).
		Update("zone_id", f.stage.ID).Error)

	// Untouched since before the cursor.
	untouched := f.assign(t, f.carol, f.afternoon, f.stage)
	require.NoError(t, f.db.Model(&models.Assignment{}).Where("id = ?", untouched.ID).
		UpdateColumns(map[string]any{
			"created_at": since.Add(-time.Hour),
			"updated_at": since.Add(-time.Hour),
		}).Error)

	delta, err := eng.Sync.Delta(f.event.ID, since)
	require.NoError(t, err)

	createdIDs := assignmentIDs(delta.Assignments.Created)
	updatedIDs := assignmentIDs(delta.Assignments.Updated)
	assert.Contains(t, createdIDs, created.ID)
	assert.NotContains(t, createdIDs, updated.ID)
	assert.Contains(t, updatedIDs, updated.ID)
	assert.NotContains(t, updatedIDs, created.ID)
	assert.NotContains(t, createdIDs, untouched.ID)
	assert.NotContains(t, updatedIDs, untouched.ID)
	assert.Empty(t, delta.Assignments.Deleted)
}

func TestDelta_DeletedTombstones(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()
	since := time.Now().Add(-30 * time.Minute)

	assignment := f.assign(t, f.alice, f.morning, f.gate)
	require.NoError(t, eng.Assignments.Remove(assignment.ID))

	// Uniform soft delete: sessions report deletions too.
	require.NoError(t, f.db.Delete(&models.Session{}, f.afternoon.ID).Error)

	delta, err := eng.Sync.Delta(f.event.ID, since)
	require.NoError(t, err)

	assert.Contains(t, delta.Assignments.Deleted, assignment.ID)
	assert.NotContains(t, assignmentIDs(delta.Assignments.Created), assignment.ID)
	assert.Contains(t, delta.Sessions.Deleted, f.afternoon.ID)
}

func TestDelta_OldTombstonesExcluded(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	assignment := f.assign(t, f.alice, f.morning, f.gate)
	require.NoError(t, eng.Assignments.Remove(assignment.ID))

	// A cursor after the deletion sees nothing for it.
	delta, err := eng.Sync.Delta(f.event.ID, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, delta.Assignments.Deleted)
	assert.Empty(t, delta.Assignments.Created)
}

func TestDelta_ZeroCursorReportsNoDeletions(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	assignment := f.assign(t, f.alice, f.morning, f.gate)

	// A client that never synced sends the zero time as its cursor. Live
	// rows carry deleted_at = 0, which a pre-epoch cursor would otherwise
	// match; they must come back as created only.
	delta, err := eng.Sync.Delta(f.event.ID, time.Time{})
	require.NoError(t, err)

	assert.Contains(t, assignmentIDs(delta.Assignments.Created), assignment.ID)
	assert.Empty(t, delta.Assignments.Deleted)
	assert.Empty(t, delta.Sessions.Deleted)
	assert.Empty(t, delta.Zones.Deleted)
	assert.Empty(t, delta.Volunteers.Deleted)
}

func assignmentIDs(assignments []models.Assignment) []uint {
	ids := make([]uint, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	return ids
}

func TestFullSync(t *testing.T) {
	f := newFixture(t)
	now := baseTime.Add(2 * time.Hour)
	eng := f.engineAt(now)

	f.assign(t, f.alice, f.morning, f.gate)
	removed := f.assign(t, f.bob, f.morning, f.gate)
	require.NoError(t, eng.Assignments.Remove(removed.ID))

	snapshot, err := eng.Sync.Full(f.event.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.ServerTime.Equal(now))
	assert.Len(t, snapshot.Sessions, 2)
	assert.Len(t, snapshot.Zones, 2)
	assert.Len(t, snapshot.Volunteers, 3)
	assert.Len(t, snapshot.Roles, 1)
	// Removed assignments are not part of the snapshot.
	assert.Len(t, snapshot.Assignments, 1)
}

func TestProcessQueue_IdempotentCheckInReplay(t *testing.T) {
	f := newFixture(t)
	assignment := f.assign(t, f.alice, f.morning, f.gate)
	eng := f.engineAt(baseTime.Add(1 * time.Hour))

	action := models.QueuedAction{
		ClientID:        uuid.NewString(),
		Type:            models.ActionCheckIn,
		ClientTimestamp: baseTime.Add(2 * time.Minute),
		AssignmentID:    assignment.ID,
	}

	first := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{action})
	require.Equal(t, 1, first.Succeeded)
	require.True(t, first.Results[0].Success)
	assert.False(t, first.Results[0].Replayed)

	second := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{action})
	require.Equal(t, 1, second.Succeeded)
	assert.True(t, second.Results[0].Replayed)
	assert.Equal(t, first.Results[0].ResultID, second.Results[0].ResultID)

	// Exactly one row despite two submissions.
	var count int64
	require.NoError(t, f.db.Model(&models.CheckIn{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProcessQueue_CheckInUsesClientTime(t *testing.T) {
	f := newFixture(t)
	assignment := f.assign(t, f.alice, f.morning, f.gate)
	// The upload happens an hour in; the client acted two minutes in.
	eng := f.engineAt(baseTime.Add(1 * time.Hour))

	result := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID:        uuid.NewString(),
		Type:            models.ActionCheckIn,
		ClientTimestamp: baseTime.Add(2 * time.Minute),
		AssignmentID:    assignment.ID,
	}})
	require.Equal(t, 1, result.Succeeded)

	var checkIn models.CheckIn
	require.NoError(t, f.db.First(&checkIn, result.Results[0].ResultID).Error)
	assert.False(t, checkIn.IsLate)
	require.NotNil(t, checkIn.CheckInTime)
	assert.True(t, checkIn.CheckInTime.Equal(baseTime.Add(2*time.Minute)))
}

func TestProcessQueue_ExistingEffectResolvesNewKey(t *testing.T) {
	f := newFixture(t)
	assignment := f.assign(t, f.alice, f.morning, f.gate)
	eng := f.engineAt(baseTime.Add(1 * time.Hour))

	first := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: models.ActionCheckIn, AssignmentID: assignment.ID,
	}})
	require.Equal(t, 1, first.Succeeded)

	// Same effect under a fresh client id: resolved against the existing
	// record rather than failing or duplicating.
	second := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: models.ActionCheckIn, AssignmentID: assignment.ID,
	}})
	require.Equal(t, 1, second.Succeeded)
	assert.True(t, second.Results[0].Replayed)
	assert.Equal(t, first.Results[0].ResultID, second.Results[0].ResultID)
}

func TestProcessQueue_CheckOut(t *testing.T) {
	f := newFixture(t)
	assignment := f.assign(t, f.alice, f.morning, f.gate)
	eng := f.engineAt(baseTime.Add(1 * time.Hour))

	result := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{
		{ClientID: uuid.NewString(), Type: models.ActionCheckIn, AssignmentID: assignment.ID},
		{ClientID: uuid.NewString(), Type: models.ActionCheckOut, ClientTimestamp: baseTime.Add(3 * time.Hour)},
	})
	require.Equal(t, 2, result.Succeeded)

	var checkIn models.CheckIn
	require.NoError(t, f.db.First(&checkIn, result.Results[1].ResultID).Error)
	assert.Equal(t, models.CheckedOut, checkIn.Status)
}

func TestProcessQueue_FailOpen(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.alice, f.morning, f.gate)
	eng := f.engineAt(baseTime.Add(1 * time.Hour))

	result := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{
		{ClientID: uuid.NewString(), Type: models.ActionQuickAlert, Body: "first aid needed at north gate"},
		{ClientID: uuid.NewString(), Type: models.ActionMessageRead, MessageID: 9999},
		{ClientID: uuid.NewString(), Type: models.ActionCheckIn},
	})

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.NotEmpty(t, result.Results[1].Error)
	assert.True(t, result.Results[2].Success)

	// The failure did not roll back the committed alert.
	var messages int64
	require.NoError(t, f.db.Model(&models.Message{}).Count(&messages).Error)
	assert.Equal(t, int64(1), messages)
}

func TestProcessQueue_MessageRead(t *testing.T) {
	f := newFixture(t)
	eng := f.engineAt(baseTime)

	message := models.Message{EventID: f.event.ID, Kind: models.KindNotice, Body: "gates open at 8"}
	require.NoError(t, f.db.Create(&message).Error)

	first := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: models.ActionMessageRead, MessageID: message.ID,
	}})
	require.Equal(t, 1, first.Succeeded)

	// A re-read under a new key resolves to the same receipt.
	second := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: models.ActionMessageRead, MessageID: message.ID,
	}})
	require.Equal(t, 1, second.Succeeded)
	assert.True(t, second.Results[0].Replayed)
	assert.Equal(t, first.Results[0].ResultID, second.Results[0].ResultID)

	var count int64
	require.NoError(t, f.db.Model(&models.MessageRead{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProcessQueue_UnknownType(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	result := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: "SELF_DESTRUCT",
	}})
	assert.Equal(t, 1, result.Failed)
}

func TestProcessQueue_QuickAlertValidation(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	result := eng.Sync.ProcessQueue(f.alice.ID, []models.QueuedAction{{
		ClientID: uuid.NewString(), Type: models.ActionQuickAlert,
	}})
	assert.Equal(t, 1, result.Failed)
}

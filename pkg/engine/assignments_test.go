package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

func TestCreateAssignment(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	assignment, err := eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID,
		SessionID:   f.morning.ID,
		ZoneID:      f.gate.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, assignment.VolunteerID)
	assert.Equal(t, f.morning.ID, assignment.SessionID)
	require.NotNil(t, assignment.Volunteer)
	assert.Equal(t, "Alice", assignment.Volunteer.Name)
}

func TestCreateAssignment_DoubleBooking(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	_, err := eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID,
	})
	require.NoError(t, err)

	// Same session, different zone: still double-booked.
	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.stage.ID,
	})
	requireCode(t, err, CodeVolunteerAlreadyAssigned)
	requireKind(t, err, KindConflict)

	// A different session is fine.
	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.afternoon.ID, ZoneID: f.stage.ID,
	})
	require.NoError(t, err)
}

func TestCreateAssignment_Unavailable(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	_, err := eng.Availability.Set(f.alice.ID, f.morning.ID, models.Unavailable)
	require.NoError(t, err)

	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID,
	})
	requireKind(t, err, KindUnavailable)

	// Flipping back to available unblocks the pair.
	_, err = eng.Availability.Set(f.alice.ID, f.morning.ID, models.Available)
	require.NoError(t, err)
	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID,
	})
	require.NoError(t, err)
}

func TestCreateAssignment_ScopeChecks(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	otherEvent := models.Event{Name: "Other"}
	require.NoError(t, f.db.Create(&otherEvent).Error)
	stranger := models.Volunteer{EventID: otherEvent.ID, Name: "Zed"}
	require.NoError(t, f.db.Create(&stranger).Error)

	// Volunteer from another event is out of scope.
	_, err := eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: stranger.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID,
	})
	requireKind(t, err, KindNotFound)

	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: 9999, ZoneID: f.gate.ID,
	})
	requireKind(t, err, KindNotFound)

	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: 9999,
	})
	requireKind(t, err, KindNotFound)
}

func TestCreateAssignment_AfterRemove(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	assignment, err := eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID,
	})
	require.NoError(t, err)
	require.NoError(t, eng.Assignments.Remove(assignment.ID))

	// The tombstone must not block a fresh assignment for the same pair.
	_, err = eng.Assignments.Create(f.event.ID, models.AssignmentInput{
		VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.stage.ID,
	})
	require.NoError(t, err)
}

func TestRemoveAssignment_NotFound(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	err := eng.Assignments.Remove(12345)
	requireKind(t, err, KindNotFound)
}

func TestStorageLevelUniqueness(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.alice, f.morning, f.gate)

	// A write that skips the application pre-check must still be rejected
	// by the unique index; this is what protects concurrent creates.
	err := f.db.Create(&models.Assignment{
		EventID:     f.event.ID,
		VolunteerID: f.alice.ID,
		SessionID:   f.morning.ID,
		ZoneID:      f.stage.ID,
	}).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestBulkCreate(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	created, err := eng.Assignments.BulkCreate(f.event.ID, []models.AssignmentInput{
		{VolunteerID: f.bob.ID, SessionID: f.afternoon.ID, ZoneID: f.stage.ID},
		{VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
		{VolunteerID: f.bob.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	// Ordered by session start, then zone display order, then name.
	assert.Equal(t, "Alice", created[0].Volunteer.Name)
	assert.Equal(t, "Bob", created[1].Volunteer.Name)
	assert.Equal(t, f.morning.ID, created[0].SessionID)
	assert.Equal(t, f.afternoon.ID, created[2].SessionID)
}

func TestBulkCreate_DuplicateInRequest(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	_, err := eng.Assignments.BulkCreate(f.event.ID, []models.AssignmentInput{
		{VolunteerID: f.bob.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
		{VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
		{VolunteerID: f.bob.ID, SessionID: f.morning.ID, ZoneID: f.stage.ID},
	})
	requireCode(t, err, CodeDuplicateInRequest)

	e := err.(*Error)
	assert.Equal(t, 2, e.Index)
	assert.Equal(t, f.bob.ID, e.VolunteerID)

	// Nothing was written.
	var count int64
	require.NoError(t, f.db.Model(&models.Assignment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBulkCreate_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()
	f.assign(t, f.carol, f.morning, f.stage)

	// The second item collides with stored state; the whole batch fails.
	_, err := eng.Assignments.BulkCreate(f.event.ID, []models.AssignmentInput{
		{VolunteerID: f.alice.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
		{VolunteerID: f.carol.ID, SessionID: f.morning.ID, ZoneID: f.gate.ID},
	})
	requireCode(t, err, CodeVolunteerAlreadyAssigned)

	var count int64
	require.NoError(t, f.db.Model(&models.Assignment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBulkCreate_SizeLimits(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	_, err := eng.Assignments.BulkCreate(f.event.ID, nil)
	requireKind(t, err, KindValidation)

	items := make([]models.AssignmentInput, MaxBulkItems+1)
	for i := range items {
		items[i] = models.AssignmentInput{VolunteerID: uint(i + 1), SessionID: f.morning.ID, ZoneID: f.gate.ID}
	}
	_, err = eng.Assignments.BulkCreate(f.event.ID, items)
	requireKind(t, err, KindValidation)
}

func TestAvailabilityDefaultsToUnset(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	status, err := eng.Availability.Get(f.alice.ID, f.morning.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Unset, status)

	blocked, err := eng.Availability.IsUnavailable(f.alice.ID, f.morning.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestAvailabilityUpsert(t *testing.T) {
	f := newFixture(t)
	eng := f.engine()

	_, err := eng.Availability.Set(f.alice.ID, f.morning.ID, models.Unavailable)
	require.NoError(t, err)
	record, err := eng.Availability.Set(f.alice.ID, f.morning.ID, models.Available)
	require.NoError(t, err)
	assert.Equal(t, models.Available, record.Status)

	var count int64
	require.NoError(t, f.db.Model(&models.Availability{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = eng.Availability.Set(f.alice.ID, f.morning.ID, "MAYBE")
	requireKind(t, err, KindValidation)
}

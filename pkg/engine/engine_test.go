package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/calebreyes/staffing-api-go/pkg/database"
	"github.com/calebreyes/staffing-api-go/pkg/models"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:engine_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fixture is a small event: one department, two zones, two sessions, three
// volunteers.
type fixture struct {
	db         *gorm.DB
	event      models.Event
	department models.Department
	role       models.Role
	gate       models.Zone // capacity 2, display order 1
	stage      models.Zone // capacity 1, display order 2
	morning    models.Session
	afternoon  models.Session
	alice      models.Volunteer
	bob        models.Volunteer
	carol      models.Volunteer
}

var baseTime = time.Date(2026, 7, 10, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db}

	f.event = models.Event{Name: "Regional Convention", StartsOn: baseTime, EndsOn: baseTime.Add(48 * time.Hour)}
	require.NoError(t, db.Create(&f.event).Error)

	f.department = models.Department{EventID: f.event.ID, Name: "Parking", DisplayOrder: 1}
	require.NoError(t, db.Create(&f.department).Error)

	f.role = models.Role{EventID: f.event.ID, Name: "Attendant"}
	require.NoError(t, db.Create(&f.role).Error)

	f.gate = models.Zone{EventID: f.event.ID, DepartmentID: f.department.ID, Name: "North Gate", RequiredCount: 2, DisplayOrder: 1}
	require.NoError(t, db.Create(&f.gate).Error)
	f.stage = models.Zone{EventID: f.event.ID, DepartmentID: f.department.ID, Name: "Stage Door", RequiredCount: 1, DisplayOrder: 2}
	require.NoError(t, db.Create(&f.stage).Error)

	f.morning = models.Session{EventID: f.event.ID, Label: "Morning", StartsAt: baseTime, EndsAt: baseTime.Add(4 * time.Hour)}
	require.NoError(t, db.Create(&f.morning).Error)
	f.afternoon = models.Session{EventID: f.event.ID, Label: "Afternoon", StartsAt: baseTime.Add(5 * time.Hour), EndsAt: baseTime.Add(9 * time.Hour)}
	require.NoError(t, db.Create(&f.afternoon).Error)

	f.alice = models.Volunteer{EventID: f.event.ID, RoleID: f.role.ID, Name: "Alice"}
	require.NoError(t, db.Create(&f.alice).Error)
	f.bob = models.Volunteer{EventID: f.event.ID, RoleID: f.role.ID, Name: "Bob"}
	require.NoError(t, db.Create(&f.bob).Error)
	f.carol = models.Volunteer{EventID: f.event.ID, RoleID: f.role.ID, Name: "Carol"}
	require.NoError(t, db.Create(&f.carol).Error)

	return f
}

// engineAt builds an engine whose clock is pinned to at.
func (f *fixture) engineAt(at time.Time) *Engine {
	return New(f.db, Options{Now: func() time.Time { return at }})
}

func (f *fixture) engine() *Engine {
	return f.engineAt(baseTime)
}

// assign creates an assignment directly, bypassing validation, for tests
// that need a known starting state.
func (f *fixture) assign(t *testing.T, volunteer models.Volunteer, session models.Session, zone models.Zone) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		EventID:     f.event.ID,
		VolunteerID: volunteer.ID,
		SessionID:   session.ID,
		ZoneID:      zone.ID,
	}
	require.NoError(t, f.db.Create(&assignment).Error)
	return assignment
}

func requireCode(t *testing.T, err error, code Code) {
	t.Helper()
	require.Error(t, err)
	got, ok := ErrCode(err)
	require.True(t, ok, "expected engine error, got %v", err)
	require.Equal(t, code, got, "unexpected error code for %v", err)
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := ErrKind(err)
	require.True(t, ok, "expected engine error, got %v", err)
	require.Equal(t, kind, got)
}

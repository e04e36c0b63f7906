package engine

import (
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/models"
)

// CoverageService derives fill matrices, gap lists, and grid summaries from
// live assignment data. It never mutates anything.
type CoverageService struct {
	db *gorm.DB
}

// DepartmentMatrix builds the zones-by-sessions fill matrix for one
// department, one cell per (zone, session) pair.
func (s *CoverageService) DepartmentMatrix(departmentID uint) (*models.CoverageMatrix, error) {
	var department models.Department
	if err := s.db.First(&department, departmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("department %d not found", departmentID)
		}
		return nil, err
	}

	var zones []models.Zone
	if err := s.db.Where("department_id = ?", departmentID).
		Order("display_order, id").Find(&zones).Error; err != nil {
		return nil, err
	}
	var sessions []models.Session
	if err := s.db.Where("event_id = ?", department.EventID).
		Order("starts_at, id").Find(&sessions).Error; err != nil {
		return nil, err
	}

	zoneIDs := make([]uint, len(zones))
	for i, z := range zones {
		zoneIDs[i] = z.ID
	}
	var assignments []models.Assignment
	if len(zoneIDs) > 0 {
		if err := s.db.Preload("Volunteer").
			Where("zone_id IN ?", zoneIDs).Find(&assignments).Error; err != nil {
			return nil, err
		}
	}

	type cellKey struct {
		zoneID    uint
		sessionID uint
	}
	byCell := make(map[cellKey][]models.Assignment)
	for _, a := range assignments {
		key := cellKey{a.ZoneID, a.SessionID}
		byCell[key] = append(byCell[key], a)
	}

	matrix := &models.CoverageMatrix{DepartmentID: departmentID}
	for _, zone := range zones {
		for _, session := range sessions {
			cellAssignments := byCell[cellKey{zone.ID, session.ID}]
			filled := len(cellAssignments)
			matrix.Cells = append(matrix.Cells, models.CoverageCell{
				Zone:        zone,
				Session:     session,
				Assignments: cellAssignments,
				Filled:      filled,
				Capacity:    zone.RequiredCount,
				IsFilled:    filled >= zone.RequiredCount,
			})
		}
	}
	return matrix, nil
}

// Gaps filters the department matrix down to unfilled cells.
func (s *CoverageService) Gaps(departmentID uint) ([]models.CoverageCell, error) {
	matrix, err := s.DepartmentMatrix(departmentID)
	if err != nil {
		return nil, err
	}
	gaps := make([]models.CoverageCell, 0)
	for _, cell := range matrix.Cells {
		if !cell.IsFilled {
			gaps = append(gaps, cell)
		}
	}
	return gaps, nil
}

// ScheduleGrid aggregates coverage for an entire event at the zone/session
// level, with the overall fill percentage.
func (s *CoverageService) ScheduleGrid(eventID uint) (*models.ScheduleGrid, error) {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("event %d not found", eventID)
		}
		return nil, err
	}

	var zones []models.Zone
	if err := s.db.Where("event_id = ?", eventID).
		Order("display_order, id").Find(&zones).Error; err != nil {
		return nil, err
	}
	var sessions []models.Session
	if err := s.db.Where("event_id = ?", eventID).
		Order("starts_at, id").Find(&sessions).Error; err != nil {
		return nil, err
	}
	var assignments []models.Assignment
	if err := s.db.Where("event_id = ?", eventID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	type cellKey struct {
		zoneID    uint
		sessionID uint
	}
	counts := make(map[cellKey]int)
	for _, a := range assignments {
		counts[cellKey{a.ZoneID, a.SessionID}]++
	}

	grid := &models.ScheduleGrid{
		EventID:  eventID,
		Sessions: sessions,
		Zones:    zones,
	}
	for _, zone := range zones {
		for _, session := range sessions {
			assigned := counts[cellKey{zone.ID, session.ID}]
			grid.Cells = append(grid.Cells, models.GridCell{
				ZoneID:    zone.ID,
				SessionID: session.ID,
				Assigned:  assigned,
				Required:  zone.RequiredCount,
			})
			grid.TotalAssigned += assigned
			grid.TotalRequired += zone.RequiredCount
		}
	}
	grid.FillPercent = fillPercent(grid.TotalAssigned, grid.TotalRequired)
	return grid, nil
}

// SessionSummary lists the zones of one session that still need coverage.
func (s *CoverageService) SessionSummary(sessionID uint) (*models.SessionSummary, error) {
	var session models.Session
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("session %d not found", sessionID)
		}
		return nil, err
	}

	var zones []models.Zone
	if err := s.db.Where("event_id = ?", session.EventID).
		Order("display_order, id").Find(&zones).Error; err != nil {
		return nil, err
	}
	var assignments []models.Assignment
	if err := s.db.Where("session_id = ?", sessionID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	assigned := make(map[uint]int)
	for _, a := range assignments {
		assigned[a.ZoneID]++
	}

	summary := &models.SessionSummary{Session: session, Needs: []models.ZoneNeed{}}
	for _, zone := range zones {
		needed := zone.RequiredCount - assigned[zone.ID]
		if needed > 0 {
			summary.Needs = append(summary.Needs, models.ZoneNeed{
				Zone:     zone,
				Assigned: assigned[zone.ID],
				Required: zone.RequiredCount,
				Needed:   needed,
			})
		}
	}
	return summary, nil
}

func fillPercent(assigned, required int) int {
	if required == 0 {
		return 0
	}
	return int(math.Round(float64(assigned) / float64(required) * 100))
}

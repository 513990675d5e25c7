package models

import "time"

// SummaryReport is returned by GET /api/reports/summary.
type SummaryReport struct {
	TotalLogs         int            `json:"total_logs"`
	LogsByStatus      map[string]int `json:"logs_by_status"`
	TotalFacilities   int            `json:"total_facilities"`
	TotalMentors      int            `json:"total_mentors"`
	TotalFollowUps    int            `json:"total_follow_ups"`
	FollowUpsByStatus map[string]int `json:"follow_ups_by_status"`
}

// LogReportFilter narrows GET /api/reports/mentorship-logs.
type LogReportFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	MentorID   string
	FacilityID string
	Status     string
}

type MentorCount struct {
	MentorID   string `json:"mentor_id"`
	MentorName string `json:"mentor_name"`
	Count      int    `json:"count"`
}

type FacilityCount struct {
	FacilityID   string `json:"facility_id"`
	FacilityName string `json:"facility_name"`
	Count        int    `json:"count"`
}

type StateCount struct {
	State *string `json:"state"`
	Count int     `json:"count"`
}

// LogReport is returned by GET /api/reports/mentorship-logs.
type LogReport struct {
	TotalCount     int             `json:"total_count"`
	LogsByMentor   []MentorCount   `json:"logs_by_mentor"`
	LogsByFacility []FacilityCount `json:"logs_by_facility"`
	LogsByState    []StateCount    `json:"logs_by_state"`
}

// FollowUpReportFilter narrows GET /api/reports/follow-ups.
type FollowUpReportFilter struct {
	Status   string
	Priority string
}

// FollowUpReport is returned by GET /api/reports/follow-ups.
type FollowUpReport struct {
	TotalCount   int            `json:"total_count"`
	PendingCount int            `json:"pending_count"`
	OverdueCount int            `json:"overdue_count"`
	ByStatus     map[string]int `json:"by_status"`
}

// FacilityVisits is one row of the coverage report.
type FacilityVisits struct {
	FacilityID    string  `json:"facility_id"`
	FacilityName  string  `json:"facility_name"`
	FacilityCode  *string `json:"facility_code"`
	State         *string `json:"state"`
	LGA           *string `json:"lga"`
	VisitCount    int     `json:"visit_count"`
	LastVisitDate *string `json:"last_visit_date"`
}

// FacilityCoverageReport is returned by GET /api/reports/facility-coverage.
type FacilityCoverageReport struct {
	TotalFacilities     int              `json:"total_facilities"`
	VisitedFacilities   int              `json:"visited_facilities"`
	UnvisitedFacilities int              `json:"unvisited_facilities"`
	Facilities          []FacilityVisits `json:"facilities"`
}

package models

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentorlog/mentorlog-api/pkg/authz"
	"github.com/mentorlog/mentorlog-api/pkg/workflow"
)

// Mentee is one health worker present at a visit.
type Mentee struct {
	Name  string `json:"name" binding:"required,max=255"`
	Cadre string `json:"cadre" binding:"max=100"`
}

// MentorshipLog is a single facility visit record.
type MentorshipLog struct {
	ID                        string          `json:"id"`
	FacilityID                string          `json:"facility_id"`
	MentorID                  string          `json:"mentor_id"`
	VisitDate                 pgtype.Date     `json:"visit_date"`
	Status                    workflow.Status `json:"status"`
	DisplayStatus             string          `json:"display_status"`
	InteractionType           *string         `json:"interaction_type"`
	DurationHours             *int            `json:"duration_hours"`
	DurationMinutes           *int            `json:"duration_minutes"`
	MenteesPresent            []Mentee        `json:"mentees_present"`
	ActivitiesConducted       []string        `json:"activities_conducted"`
	ActivitiesOtherSpecify    *string         `json:"activities_other_specify"`
	ThematicAreas             []string        `json:"thematic_areas"`
	ThematicAreasOtherSpecify *string         `json:"thematic_areas_other_specify"`
	StrengthsObserved         *string         `json:"strengths_observed"`
	GapsIdentified            *string         `json:"gaps_identified"`
	RootCauses                *string         `json:"root_causes"`
	ChallengesEncountered     *string         `json:"challenges_encountered"`
	SolutionsProposed         *string         `json:"solutions_proposed"`
	SupportNeeded             *string         `json:"support_needed"`
	SuccessStories            *string         `json:"success_stories"`
	AttachmentTypes           []string        `json:"attachment_types"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
	SubmittedAt               *time.Time      `json:"submitted_at"`
	ApprovedAt                *time.Time      `json:"approved_at"`
	ApprovedBy                *string         `json:"approved_by"`
	RejectedAt                *time.Time      `json:"rejected_at"`
	RejectionReason           *string         `json:"rejection_reason"`

	Facility        *FacilitySummary `json:"facility,omitempty"`
	Mentor          *UserSummary     `json:"mentor,omitempty"`
	Approver        *UserSummary     `json:"approver,omitempty"`
	SkillsTransfers []SkillsTransfer `json:"skills_transfers"`
	FollowUps       []FollowUp       `json:"follow_ups"`
	Attachments     []Attachment     `json:"attachments"`
	Comments        []Comment        `json:"comments"`
}

// State extracts the workflow fields.
func (l *MentorshipLog) State() workflow.State {
	return workflow.State{
		Status:          l.Status,
		SubmittedAt:     l.SubmittedAt,
		ApprovedAt:      l.ApprovedAt,
		ApprovedBy:      l.ApprovedBy,
		RejectedAt:      l.RejectedAt,
		RejectionReason: l.RejectionReason,
	}
}

// SetState copies workflow fields back and refreshes DisplayStatus.
func (l *MentorshipLog) SetState(s workflow.State) {
	l.Status = s.Status
	l.SubmittedAt = s.SubmittedAt
	l.ApprovedAt = s.ApprovedAt
	l.ApprovedBy = s.ApprovedBy
	l.RejectedAt = s.RejectedAt
	l.RejectionReason = s.RejectionReason
	l.DisplayStatus = s.DisplayStatus()
}

// FacilityName returns the embedded facility name, or "".
func (l *MentorshipLog) FacilityName() string {
	if l.Facility == nil {
		return ""
	}
	return l.Facility.Name
}

// SkillsTransfer records one skill passed on during a visit.
type SkillsTransfer struct {
	ID                        string    `json:"id"`
	MentorshipLogID           string    `json:"mentorship_log_id"`
	SkillKnowledgeTransferred string    `json:"skill_knowledge_transferred"`
	RecipientName             *string   `json:"recipient_name"`
	RecipientCadre            *string   `json:"recipient_cadre"`
	Method                    *string   `json:"method"`
	CompetencyLevel           *string   `json:"competency_level"`
	FollowupNeeded            bool      `json:"followup_needed"`
	CreatedAt                 time.Time `json:"created_at"`
}

// SkillsTransferInput is nested in log create/update payloads.
type SkillsTransferInput struct {
	SkillKnowledgeTransferred string  `json:"skill_knowledge_transferred" binding:"required,min=1"`
	RecipientName             *string `json:"recipient_name" binding:"omitempty,max=255"`
	RecipientCadre            *string `json:"recipient_cadre" binding:"omitempty,max=100"`
	Method                    *string `json:"method" binding:"omitempty,max=255"`
	CompetencyLevel           *string `json:"competency_level" binding:"omitempty,max=100"`
	FollowupNeeded            bool    `json:"followup_needed"`
}

// MentorshipLogCreateRequest is the payload for POST /api/mentorship-logs.
type MentorshipLogCreateRequest struct {
	FacilityID                string                `json:"facility_id" binding:"required,uuid"`
	VisitDate                 pgtype.Date           `json:"visit_date"`
	InteractionType           *string               `json:"interaction_type" binding:"omitempty,max=50"`
	DurationHours             *int                  `json:"duration_hours" binding:"omitempty,min=0,max=24"`
	DurationMinutes           *int                  `json:"duration_minutes" binding:"omitempty,min=0,max=59"`
	MenteesPresent            []Mentee              `json:"mentees_present" binding:"omitempty,dive"`
	ActivitiesConducted       []string              `json:"activities_conducted"`
	ActivitiesOtherSpecify    *string               `json:"activities_other_specify"`
	ThematicAreas             []string              `json:"thematic_areas"`
	ThematicAreasOtherSpecify *string               `json:"thematic_areas_other_specify"`
	StrengthsObserved         *string               `json:"strengths_observed"`
	GapsIdentified            *string               `json:"gaps_identified"`
	RootCauses                *string               `json:"root_causes"`
	ChallengesEncountered     *string               `json:"challenges_encountered"`
	SolutionsProposed         *string               `json:"solutions_proposed"`
	SupportNeeded             *string               `json:"support_needed"`
	SuccessStories            *string               `json:"success_stories"`
	AttachmentTypes           []string              `json:"attachment_types"`
	SkillsTransfers           []SkillsTransferInput `json:"skills_transfers" binding:"omitempty,dive"`
	FollowUps                 []FollowUpInput       `json:"follow_ups" binding:"omitempty,dive"`
}

// MentorshipLogUpdateRequest is the payload for PUT /api/mentorship-logs/:id.
// Nil fields are left unchanged. Non-nil nested lists replace the stored ones.
type MentorshipLogUpdateRequest struct {
	FacilityID                *string               `json:"facility_id" binding:"omitempty,uuid"`
	VisitDate                 *pgtype.Date          `json:"visit_date"`
	InteractionType           *string               `json:"interaction_type" binding:"omitempty,max=50"`
	DurationHours             *int                  `json:"duration_hours" binding:"omitempty,min=0,max=24"`
	DurationMinutes           *int                  `json:"duration_minutes" binding:"omitempty,min=0,max=59"`
	MenteesPresent            []Mentee              `json:"mentees_present" binding:"omitempty,dive"`
	ActivitiesConducted       []string              `json:"activities_conducted"`
	ActivitiesOtherSpecify    *string               `json:"activities_other_specify"`
	ThematicAreas             []string              `json:"thematic_areas"`
	ThematicAreasOtherSpecify *string               `json:"thematic_areas_other_specify"`
	StrengthsObserved         *string               `json:"strengths_observed"`
	GapsIdentified            *string               `json:"gaps_identified"`
	RootCauses                *string               `json:"root_causes"`
	ChallengesEncountered     *string               `json:"challenges_encountered"`
	SolutionsProposed         *string               `json:"solutions_proposed"`
	SupportNeeded             *string               `json:"support_needed"`
	SuccessStories            *string               `json:"success_stories"`
	AttachmentTypes           []string              `json:"attachment_types"`
	SkillsTransfers           []SkillsTransferInput `json:"skills_transfers" binding:"omitempty,dive"`
	FollowUps                 []FollowUpInput       `json:"follow_ups" binding:"omitempty,dive"`
}

// Apply copies the set fields of req onto l. Nested lists are handled by the caller.
func (req *MentorshipLogUpdateRequest) Apply(l *MentorshipLog) {
	if req.FacilityID != nil {
		l.FacilityID = *req.FacilityID
	}
	if req.VisitDate != nil {
		l.VisitDate = *req.VisitDate
	}
	setIfPresent(&l.InteractionType, req.InteractionType)
	if req.DurationHours != nil {
		l.DurationHours = req.DurationHours
	}
	if req.DurationMinutes != nil {
		l.DurationMinutes = req.DurationMinutes
	}
	if req.MenteesPresent != nil {
		l.MenteesPresent = req.MenteesPresent
	}
	if req.ActivitiesConducted != nil {
		l.ActivitiesConducted = req.ActivitiesConducted
	}
	setIfPresent(&l.ActivitiesOtherSpecify, req.ActivitiesOtherSpecify)
	if req.ThematicAreas != nil {
		l.ThematicAreas = req.ThematicAreas
	}
	setIfPresent(&l.ThematicAreasOtherSpecify, req.ThematicAreasOtherSpecify)
	setIfPresent(&l.StrengthsObserved, req.StrengthsObserved)
	setIfPresent(&l.GapsIdentified, req.GapsIdentified)
	setIfPresent(&l.RootCauses, req.RootCauses)
	setIfPresent(&l.ChallengesEncountered, req.ChallengesEncountered)
	setIfPresent(&l.SolutionsProposed, req.SolutionsProposed)
	setIfPresent(&l.SupportNeeded, req.SupportNeeded)
	setIfPresent(&l.SuccessStories, req.SuccessStories)
	if req.AttachmentTypes != nil {
		l.AttachmentTypes = req.AttachmentTypes
	}
}

func setIfPresent(dst **string, src *string) {
	if src != nil {
		*dst = src
	}
}

// MentorshipLogFilter narrows GET /api/mentorship-logs.
type MentorshipLogFilter struct {
	FacilityID    string
	MentorID      string
	Status        string
	VisitDateFrom *time.Time
	VisitDateTo   *time.Time
	Page
}

// LogVisibility limits which logs a non-admin viewer can see.
type LogVisibility struct {
	ViewerID        string
	All             bool
	IncludeMentees  bool
	Specializations []string
}

// MentorshipLogColumns is the select list matching ScanMentorshipLog.
const MentorshipLogColumns = `l.id, l.facility_id, l.mentor_id, l.visit_date, l.status::text,
	l.interaction_type, l.duration_hours, l.duration_minutes, l.mentees_present,
	l.activities_conducted, l.activities_other_specify, l.thematic_areas,
	l.thematic_areas_other_specify, l.strengths_observed, l.gaps_identified, l.root_causes,
	l.challenges_encountered, l.solutions_proposed, l.support_needed, l.success_stories,
	l.attachment_types, l.created_at, l.updated_at, l.submitted_at, l.approved_at,
	l.approved_by, l.rejected_at, l.rejection_reason,
	f.name, f.code, f.state, f.lga,
	m.name, m.email, m.role::text`

// ScanMentorshipLog scans a row selected with MentorshipLogColumns, joined to
// facilities f and users m.
func ScanMentorshipLog(row pgx.Row) (*MentorshipLog, error) {
	var l MentorshipLog
	var status, mentorRole string
	facility := FacilitySummary{}
	mentor := UserSummary{}

	err := row.Scan(
		&l.ID,
		&l.FacilityID,
		&l.MentorID,
		&l.VisitDate,
		&status,
		&l.InteractionType,
		&l.DurationHours,
		&l.DurationMinutes,
		&l.MenteesPresent,
		&l.ActivitiesConducted,
		&l.ActivitiesOtherSpecify,
		&l.ThematicAreas,
		&l.ThematicAreasOtherSpecify,
		&l.StrengthsObserved,
		&l.GapsIdentified,
		&l.RootCauses,
		&l.ChallengesEncountered,
		&l.SolutionsProposed,
		&l.SupportNeeded,
		&l.SuccessStories,
		&l.AttachmentTypes,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.SubmittedAt,
		&l.ApprovedAt,
		&l.ApprovedBy,
		&l.RejectedAt,
		&l.RejectionReason,
		&facility.Name,
		&facility.Code,
		&facility.State,
		&facility.LGA,
		&mentor.Name,
		&mentor.Email,
		&mentorRole,
	)
	if err != nil {
		return nil, err
	}

	l.Status = workflow.Status(status)
	l.DisplayStatus = l.State().DisplayStatus()

	facility.ID = l.FacilityID
	l.Facility = &facility

	mentor.ID = l.MentorID
	mentor.Role = authz.Role(mentorRole)
	l.Mentor = &mentor

	l.normalizeLists()
	return &l, nil
}

// ScanMentorshipLogs scans every row and closes rows.
func ScanMentorshipLogs(rows pgx.Rows) ([]*MentorshipLog, error) {
	defer rows.Close()

	logs := []*MentorshipLog{}
	for rows.Next() {
		l, err := ScanMentorshipLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (l *MentorshipLog) normalizeLists() {
	if l.MenteesPresent == nil {
		l.MenteesPresent = []Mentee{}
	}
	if l.ActivitiesConducted == nil {
		l.ActivitiesConducted = []string{}
	}
	if l.ThematicAreas == nil {
		l.ThematicAreas = []string{}
	}
	if l.AttachmentTypes == nil {
		l.AttachmentTypes = []string{}
	}
	if l.SkillsTransfers == nil {
		l.SkillsTransfers = []SkillsTransfer{}
	}
	if l.FollowUps == nil {
		l.FollowUps = []FollowUp{}
	}
	if l.Attachments == nil {
		l.Attachments = []Attachment{}
	}
	if l.Comments == nil {
		l.Comments = []Comment{}
	}
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (l *MentorshipLog) Normalize() {
	l.normalizeLists()
	l.DisplayStatus = l.State().DisplayStatus()
}

package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Facility is a health facility that mentors visit.
type Facility struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Code          *string   `json:"code"`
	Location      *string   `json:"location"`
	State         *string   `json:"state"`
	LGA           *string   `json:"lga"`
	FacilityType  *string   `json:"facility_type"`
	ContactPerson *string   `json:"contact_person"`
	ContactEmail  *string   `json:"contact_email"`
	ContactPhone  *string   `json:"contact_phone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FacilitySummary is embedded in mentorship log responses.
type FacilitySummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Code  *string `json:"code"`
	State *string `json:"state"`
	LGA   *string `json:"lga"`
}

// FacilityRequest is the payload for creating a facility. Updates use the
// same shape with every field optional.
type FacilityRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	Code          *string `json:"code" binding:"omitempty,max=50"`
	Location      *string `json:"location" binding:"omitempty,max=255"`
	State         *string `json:"state" binding:"omitempty,max=100"`
	LGA           *string `json:"lga" binding:"omitempty,max=100"`
	FacilityType  *string `json:"facility_type" binding:"omitempty,max=100"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	ContactEmail  *string `json:"contact_email" binding:"omitempty,email,max=255"`
	ContactPhone  *string `json:"contact_phone" binding:"omitempty,max=20"`
}

type FacilityUpdateRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	Code          *string `json:"code" binding:"omitempty,max=50"`
	Location      *string `json:"location" binding:"omitempty,max=255"`
	State         *string `json:"state" binding:"omitempty,max=100"`
	LGA           *string `json:"lga" binding:"omitempty,max=100"`
	FacilityType  *string `json:"facility_type" binding:"omitempty,max=100"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	ContactEmail  *string `json:"contact_email" binding:"omitempty,email,max=255"`
	ContactPhone  *string `json:"contact_phone" binding:"omitempty,max=20"`
}

// FacilityFilter narrows GET /api/facilities. Matching is case-insensitive.
type FacilityFilter struct {
	State        string
	LGA          string
	FacilityType string
	Search       string
	Page
}

// FacilityColumns is the select list matching ScanFacility.
const FacilityColumns = `f.id, f.name, f.code, f.location, f.state, f.lga, f.facility_type,
	f.contact_person, f.contact_email, f.contact_phone, f.created_at, f.updated_at`

// ScanFacility scans a row selected with FacilityColumns.
func ScanFacility(row pgx.Row) (*Facility, error) {
	var f Facility
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Code,
		&f.Location,
		&f.State,
		&f.LGA,
		&f.FacilityType,
		&f.ContactPerson,
		&f.ContactEmail,
		&f.ContactPhone,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ScanFacilities scans every row and closes rows.
func ScanFacilities(rows pgx.Rows) ([]*Facility, error) {
	defer rows.Close()

	facilities := []*Facility{}
	for rows.Next() {
		f, err := ScanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return facilities, nil
}

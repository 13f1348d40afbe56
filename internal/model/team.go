package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamStatus represents the review state of a team.
type TeamStatus string

const (
	TeamStatusRegistered TeamStatus = "registered"
	TeamStatusConfirmed  TeamStatus = "confirmed"
	TeamStatusCancelled  TeamStatus = "cancelled"
)

// TeamStatuses lists every valid status in display order.
var TeamStatuses = []TeamStatus{TeamStatusRegistered, TeamStatusConfirmed, TeamStatusCancelled}

// Valid reports whether s is one of the enumerated statuses.
func (s TeamStatus) Valid() bool {
	for _, v := range TeamStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	MinMembers = 1
	MaxMembers = 4
)

// Branches enumerates the accepted member branches.
var Branches = []string{
	"Computer Science",
	"Information Technology",
	"Electronics and Communication",
	"Electrical Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
	"Chemical Engineering",
	"Biotechnology",
	"Other",
}

// Semesters enumerates the accepted semester values.
var Semesters = []string{"1", "2", "3", "4", "5", "6", "7", "8", "Other"}

// Team represents a hackathon team registration.
type Team struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	TeamName           string     `json:"teamName" gorm:"size:100;not null"`
	TeamNameKey        string     `json:"-" gorm:"size:100;not null;uniqueIndex:idx_teams_name_key"`
	RegistrationNumber string     `json:"registrationNumber" gorm:"size:20;not null;uniqueIndex:idx_teams_registration_number"`
	Members            []Member   `json:"members" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	ProjectIdea        *string    `json:"projectIdea" gorm:"type:text"`
	Status             TeamStatus `json:"status" gorm:"type:varchar(20);not null;default:'registered';index"`
	RegisteredBy       *uuid.UUID `json:"registeredBy" gorm:"type:char(36);index"`
	SubmittedAt        time.Time  `json:"submittedAt" gorm:"not null;index"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID and submission time before creating the record.
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.SubmittedAt.IsZero() {
		t.SubmittedAt = time.Now()
	}
	if t.Status == "" {
		t.Status = TeamStatusRegistered
	}
	return nil
}

// BeforeSave keeps the case-insensitive name key in step with the display name.
func (t *Team) BeforeSave(tx *gorm.DB) error {
	t.TeamNameKey = TeamNameKey(t.TeamName)
	return nil
}

// CanBeEdited reports whether a participant may still change the team.
func (t *Team) CanBeEdited() bool {
	return t.Status == TeamStatusRegistered
}

// IsOwnedBy reports whether userID registered the team.
func (t *Team) IsOwnedBy(userID uuid.UUID) bool {
	return t.RegisteredBy != nil && *t.RegisteredBy == userID
}

// Member is one participant embedded in a team. Email and USN are globally unique.
type Member struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	TeamID   uuid.UUID `json:"-" gorm:"type:char(36);not null;index"`
	Position int       `json:"-" gorm:"not null"`
	Name     string    `json:"name" gorm:"size:100;not null"`
	Email    string    `json:"email" gorm:"size:255;not null;uniqueIndex:idx_team_members_email"`
	Phone    string    `json:"phone" gorm:"size:15;not null"`
	Branch   string    `json:"branch" gorm:"size:64;not null"`
	USN      string    `json:"usn" gorm:"column:usn;size:20;not null;uniqueIndex:idx_team_members_usn"`
	Semester string    `json:"semester" gorm:"size:8;not null"`
	College  string    `json:"college" gorm:"size:200;not null"`
}

// TableName pins the member table name.
func (Member) TableName() string {
	return "team_members"
}

// RegistrationCounter holds the last issued registration sequence for a year.
type RegistrationCounter struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	Value     int `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// RegistrationPrefix is the fixed prefix of registration numbers for a year.
func RegistrationPrefix(year int) string {
	return fmt.Sprintf("HAI-%d-", year)
}

// FormatRegistrationNumber renders HAI-<year>-<4 digit sequence>.
func FormatRegistrationNumber(year, sequence int) string {
	return fmt.Sprintf("%s%04d", RegistrationPrefix(year), sequence)
}

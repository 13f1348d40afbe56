package service

import (
	"encoding/json"
	"strings"

	"hackathon/internal/model"
)

// MemberInput is one team member as submitted by a client.
type MemberInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100,personname" example:"Asha Rao"`
	Email    string `json:"email" validate:"required,email,max=255" example:"asha@example.com"`
	Phone    string `json:"phone" validate:"required,phone" example:"9876543210"`
	Branch   string `json:"branch" validate:"required,branch" example:"Computer Science"`
	USN      string `json:"usn" validate:"required,min=5,max=20,usn" example:"1AB20CS001"`
	Semester string `json:"semester" validate:"required,semester" example:"5"`
	College  string `json:"college" validate:"required,min=2,max=200" example:"ABC College"`
}

// Normalize trims every field and applies the canonical email and USN forms.
func (m *MemberInput) Normalize() {
	member := m.toModel()
	member.Normalize()
	*m = memberInputFrom(member)
}

func (m MemberInput) toModel() model.Member {
	return model.Member{
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Branch:   m.Branch,
		USN:      m.USN,
		Semester: m.Semester,
		College:  m.College,
	}
}

func memberInputFrom(m model.Member) MemberInput {
	return MemberInput{
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Branch:   m.Branch,
		USN:      m.USN,
		Semester: m.Semester,
		College:  m.College,
	}
}

// TeamInput is a complete team submission.
type TeamInput struct {
	TeamName    string        `json:"teamName" validate:"required,min=2,max=100,teamname" example:"Byte Busters"`
	Members     []MemberInput `json:"members" validate:"required,min=1,max=4"`
	ProjectIdea *string       `json:"projectIdea,omitempty" validate:"omitempty,max=1000"`
}

// Normalize trims the team name and project idea and normalizes every member.
// A blank project idea becomes nil.
func (t *TeamInput) Normalize() {
	t.TeamName = strings.TrimSpace(t.TeamName)
	t.ProjectIdea = trimOptional(t.ProjectIdea)
	for i := range t.Members {
		t.Members[i].Normalize()
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (t TeamInput) members() []model.Member {
	members := make([]model.Member, len(t.Members))
	for i, m := range t.Members {
		members[i] = m.toModel()
	}
	return members
}

func teamInputFrom(team *model.Team) TeamInput {
	input := TeamInput{TeamName: team.TeamName, ProjectIdea: team.ProjectIdea}
	for _, m := range team.Members {
		input.Members = append(input.Members, memberInputFrom(m))
	}
	return input
}

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// TeamPatch is a partial team update. Nil fields keep their stored values.
type TeamPatch struct {
	TeamName    *string           `json:"teamName,omitempty" example:"Byte Busters"`
	Members     *[]MemberInput    `json:"members,omitempty"`
	ProjectIdea OptionalString    `json:"projectIdea" swaggertype:"string"`
	Status      *model.TeamStatus `json:"status,omitempty" enums:"registered,confirmed,cancelled"`
}

// apply merges the patch into the submission built from the stored team.
func (p TeamPatch) apply(current TeamInput) TeamInput {
	merged := current
	if p.TeamName != nil {
		merged.TeamName = *p.TeamName
	}
	if p.Members != nil {
		merged.Members = append([]MemberInput(nil), (*p.Members)...)
	}
	if p.ProjectIdea.Set {
		merged.ProjectIdea = p.ProjectIdea.Value
	}
	return merged
}

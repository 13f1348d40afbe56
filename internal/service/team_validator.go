package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hackathon/internal/errors"
	"hackathon/internal/model"
	"hackathon/internal/repository"
)

// Messages reported by the uniqueness checks.
const (
	msgDuplicateTeamName     = "A team with this name already exists"
	msgDuplicateMemberEmails = "All members must have unique email addresses"
	msgDuplicateMemberUSNs   = "All members must have unique USNs"
	msgEmailRegistered       = "Email is already registered"
	msgUSNRegistered         = "USN is already registered"
)

// TeamValidator runs shape and uniqueness checks for team submissions
// before anything is written.
type TeamValidator struct {
	rules *Validator
	teams repository.TeamRepository
}

// NewTeamValidator creates a team validator backed by the team repository.
func NewTeamValidator(rules *Validator, teams repository.TeamRepository) *TeamValidator {
	return &TeamValidator{rules: rules, teams: teams}
}

// ValidateTeamShape checks team and member field rules.
func (v *TeamValidator) ValidateTeamShape(team TeamInput) error {
	return v.rules.ValidateTeamShape(team)
}

// CheckIntraTeamUniqueness fails when two members of one submission share an email or a USN.
// Members must already be normalized.
func (v *TeamValidator) CheckIntraTeamUniqueness(members []model.Member) error {
	var fields []errors.FieldError
	message := ""

	seenEmail := make(map[string]bool, len(members))
	for i, m := range members {
		if seenEmail[m.Email] {
			message = msgDuplicateMemberEmails
			fields = append(fields, errors.FieldError{
				Field:   fmt.Sprintf("members[%d].email", i),
				Message: msgDuplicateMemberEmails,
				Value:   m.Email,
			})
		}
		seenEmail[m.Email] = true
	}

	seenUSN := make(map[string]bool, len(members))
	for i, m := range members {
		if seenUSN[m.USN] {
			if message == "" {
				message = msgDuplicateMemberUSNs
			}
			fields = append(fields, errors.FieldError{
				Field:   fmt.Sprintf("members[%d].usn", i),
				Message: msgDuplicateMemberUSNs,
				Value:   m.USN,
			})
		}
		seenUSN[m.USN] = true
	}

	if len(fields) == 0 {
		return nil
	}
	return errors.Validation(message, fields...)
}

// CheckTeamNameUniqueness fails when another team already uses name, ignoring case.
func (v *TeamValidator) CheckTeamNameUniqueness(ctx context.Context, name string, excludeID *uuid.UUID) error {
	taken, err := v.teams.NameTaken(ctx, name, excludeID)
	if err != nil {
		return errors.Internal(fmt.Errorf("check team name: %w", err))
	}
	if taken {
		return errors.Validation(msgDuplicateTeamName, errors.FieldError{
			Field:   "teamName",
			Message: msgDuplicateTeamName,
			Value:   name,
		})
	}
	return nil
}

// CheckCrossTeamUniqueness fails when any member email or USN already belongs to another team.
// Every colliding value is reported, in canonical form, in a single error.
func (v *TeamValidator) CheckCrossTeamUniqueness(ctx context.Context, members []model.Member, excludeID *uuid.UUID) error {
	emails := make([]string, len(members))
	usns := make([]string, len(members))
	for i, m := range members {
		emails[i] = m.Email
		usns[i] = m.USN
	}

	stored, err := v.teams.FindMemberConflicts(ctx, emails, usns, excludeID)
	if err != nil {
		return errors.Internal(fmt.Errorf("check member uniqueness: %w", err))
	}
	if len(stored) == 0 {
		return nil
	}

	takenEmail := make(map[string]bool, len(stored))
	takenUSN := make(map[string]bool, len(stored))
	for _, m := range stored {
		takenEmail[model.NormalizeEmail(m.Email)] = true
		takenUSN[model.NormalizeUSN(m.USN)] = true
	}

	var fields []errors.FieldError
	var dupEmails, dupUSNs []string
	for i, m := range members {
		if takenEmail[m.Email] {
			dupEmails = append(dupEmails, m.Email)
			fields = append(fields, errors.FieldError{
				Field:   fmt.Sprintf("members[%d].email", i),
				Message: msgEmailRegistered,
				Value:   m.Email,
			})
		}
	}
	for i, m := range members {
		if takenUSN[m.USN] {
			dupUSNs = append(dupUSNs, m.USN)
			fields = append(fields, errors.FieldError{
				Field:   fmt.Sprintf("members[%d].usn", i),
				Message: msgUSNRegistered,
				Value:   m.USN,
			})
		}
	}

	var parts []string
	if len(dupEmails) > 0 {
		parts = append(parts, "The following email(s) are already registered: "+strings.Join(dupEmails, ", "))
	}
	if len(dupUSNs) > 0 {
		parts = append(parts, "The following USN(s) are already registered: "+strings.Join(dupUSNs, ", "))
	}
	return errors.Validation(strings.Join(parts, ". "), fields...)
}

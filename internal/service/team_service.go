package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hackathon/internal/cache"
	"hackathon/internal/errors"
	"hackathon/internal/metrics"
	"hackathon/internal/model"
	"hackathon/internal/repository"
)

const (
	statusCacheKey = "hackathon:status"
	statusCacheTTL = 30 * time.Second
	recentWindow   = 7 * 24 * time.Hour

	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Actor identifies who performs a team operation.
type Actor struct {
	UserID  *uuid.UUID
	IsAdmin bool
}

// AdminActor is the actor for operations made with an admin token.
var AdminActor = Actor{IsAdmin: true}

// ParticipantActor is the actor for operations made with a participant token.
func ParticipantActor(userID uuid.UUID) Actor {
	return Actor{UserID: &userID}
}

// ListQuery selects a page of teams. Zero values take the defaults.
type ListQuery struct {
	Page      int              `query:"page" validate:"omitempty,min=1"`
	Limit     int              `query:"limit" validate:"omitempty,min=1,max=100"`
	Search    string           `query:"search" validate:"max=100"`
	Status    model.TeamStatus `query:"status" validate:"omitempty,oneof=registered confirmed cancelled"`
	SortBy    string           `query:"sortBy" validate:"omitempty,oneof=teamName submittedAt status"`
	SortOrder string           `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// TeamList is one page of teams with page metadata and capacity stats.
type TeamList struct {
	Teams      []model.Team            `json:"teams"`
	Pagination model.Pagination        `json:"pagination"`
	Stats      model.RegistrationStats `json:"stats"`
}

// TeamService orchestrates the team registration lifecycle.
type TeamService interface {
	RegisterTeam(ctx context.Context, input TeamInput, registeredBy *uuid.UUID) (*model.Team, model.RegistrationStats, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, patch TeamPatch, actor Actor) (*model.Team, error)
	UpdateOwnTeam(ctx context.Context, userID uuid.UUID, patch TeamPatch) (*model.Team, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TeamStatus) (*model.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error)
	GetOwnTeam(ctx context.Context, userID uuid.UUID) (*model.Team, error)
	ListTeams(ctx context.Context, query ListQuery) (*TeamList, error)
	GetRegistrationStats(ctx context.Context) (model.RegistrationStats, error)
	GetStatusReport(ctx context.Context) (*model.StatusReport, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

type teamService struct {
	teams     repository.TeamRepository
	validator *TeamValidator
	cache     *cache.Client
	metrics   *metrics.Metrics
	log       *slog.Logger
	maxTeams  int64
	now       func() time.Time
}

// NewTeamService creates a team service. cache and m may be nil.
func NewTeamService(teams repository.TeamRepository, validator *TeamValidator, cache *cache.Client, m *metrics.Metrics, maxTeams int, log *slog.Logger) TeamService {
	if log == nil {
		log = slog.Default()
	}
	return &teamService{
		teams:     teams,
		validator: validator,
		cache:     cache,
		metrics:   m,
		log:       log,
		maxTeams:  int64(maxTeams),
		now:       time.Now,
	}
}

// RegisterTeam validates and stores a new team and returns it with the updated capacity stats.
func (s *teamService) RegisterTeam(ctx context.Context, input TeamInput, registeredBy *uuid.UUID) (*model.Team, model.RegistrationStats, error) {
	var none model.RegistrationStats

	total, err := s.teams.Count(ctx)
	if err != nil {
		return nil, none, errors.Internal(fmt.Errorf("count teams: %w", err))
	}
	if total >= s.maxTeams {
		s.metrics.RegistrationRejected(metrics.ReasonCapacity)
		return nil, none, errors.ErrRegistrationClosed
	}

	input.Normalize()
	members := input.members()
	if err := s.validate(ctx, input, members, nil); err != nil {
		s.metrics.RegistrationRejected(metrics.ReasonValidation)
		return nil, none, err
	}

	team := &model.Team{
		TeamName:     input.TeamName,
		Members:      members,
		ProjectIdea:  input.ProjectIdea,
		Status:       model.TeamStatusRegistered,
		RegisteredBy: registeredBy,
	}
	err = s.teams.CreateWithRegistrationNumber(ctx, team, s.maxTeams, s.now().Year())
	switch {
	case err == nil:
	case stderrors.Is(err, repository.ErrCapacityReached):
		s.metrics.RegistrationRejected(metrics.ReasonCapacity)
		return nil, none, errors.ErrRegistrationClosed
	case repository.IsDuplicateKey(err):
		s.metrics.RegistrationRejected(metrics.ReasonDuplicate)
		return nil, none, errors.ErrDuplicateRecord
	default:
		return nil, none, errors.Internal(fmt.Errorf("create team: %w", err))
	}

	s.metrics.TeamRegistered()
	s.invalidateStatus(ctx)
	s.log.Info("team registered",
		"team_id", team.ID,
		"registration_number", team.RegistrationNumber,
		"members", len(team.Members),
	)

	stats, err := s.GetRegistrationStats(ctx)
	if err != nil {
		return nil, none, err
	}
	return team, stats, nil
}

// validate runs the checks in order: shape, intra-team, team name, cross-team.
func (s *teamService) validate(ctx context.Context, input TeamInput, members []model.Member, excludeID *uuid.UUID) error {
	if err := s.validator.ValidateTeamShape(input); err != nil {
		return err
	}
	if err := s.validator.CheckIntraTeamUniqueness(members); err != nil {
		return err
	}
	if err := s.validator.CheckTeamNameUniqueness(ctx, input.TeamName, excludeID); err != nil {
		return err
	}
	return s.validator.CheckCrossTeamUniqueness(ctx, members, excludeID)
}

// UpdateTeam applies a partial update. Participants may only edit their own team while it is registered.
func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, patch TeamPatch, actor Actor) (*model.Team, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, team, patch, actor)
}

// UpdateOwnTeam applies a partial update to the team registered by userID.
func (s *teamService) UpdateOwnTeam(ctx context.Context, userID uuid.UUID, patch TeamPatch) (*model.Team, error) {
	team, err := s.GetOwnTeam(ctx, userID)
	if err != nil {
		return nil, err
	}
	patch.Status = nil
	return s.update(ctx, team, patch, ParticipantActor(userID))
}

func (s *teamService) update(ctx context.Context, team *model.Team, patch TeamPatch, actor Actor) (*model.Team, error) {
	if !actor.IsAdmin {
		if actor.UserID == nil || !team.IsOwnedBy(*actor.UserID) {
			return nil, errors.ErrTeamForbidden
		}
		if !team.CanBeEdited() {
			return nil, errors.ErrTeamLocked
		}
		patch.Status = nil
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidStatus(*patch.Status)
	}

	input := patch.apply(teamInputFrom(team))
	input.Normalize()
	members := input.members()
	if err := s.validate(ctx, input, members, &team.ID); err != nil {
		return nil, err
	}

	changes := repository.TeamChanges{
		TeamName:    input.TeamName,
		ProjectIdea: input.ProjectIdea,
		Status:      patch.Status,
	}
	if patch.Members != nil {
		changes.Members = members
	}
	if !actor.IsAdmin {
		// the status may have moved on since the editability check above
		registered := model.TeamStatusRegistered
		changes.RequireStatus = &registered
	}

	if err := s.teams.Update(ctx, team.ID, changes); err != nil {
		switch {
		case stderrors.Is(err, repository.ErrStatusChanged):
			return nil, errors.ErrTeamLocked
		case repository.IsNotFound(err):
			return nil, errors.ErrTeamNotFound
		case repository.IsDuplicateKey(err):
			return nil, errors.ErrDuplicateRecord
		}
		return nil, errors.Internal(fmt.Errorf("update team: %w", err))
	}
	s.invalidateStatus(ctx)
	return s.GetTeam(ctx, team.ID)
}

func invalidStatus(status model.TeamStatus) error {
	return errors.Validation("Invalid status value", errors.FieldError{
		Field:   "status",
		Message: "Invalid status value",
		Value:   string(status),
	})
}

// UpdateStatus sets the status of a team.
func (s *teamService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TeamStatus) (*model.Team, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	team, err := s.teams.UpdateStatus(ctx, id, status)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrTeamNotFound
		}
		return nil, errors.Internal(fmt.Errorf("update team status: %w", err))
	}
	s.invalidateStatus(ctx)
	return team, nil
}

// DeleteTeam removes a team and its members.
func (s *teamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if err := s.teams.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return errors.ErrTeamNotFound
		}
		return errors.Internal(fmt.Errorf("delete team: %w", err))
	}
	s.invalidateStatus(ctx)
	return nil
}

func (s *teamService) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	team, err := s.teams.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrTeamNotFound
		}
		return nil, errors.Internal(fmt.Errorf("find team: %w", err))
	}
	return team, nil
}

func (s *teamService) GetOwnTeam(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	team, err := s.teams.FindByOwner(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errors.ErrOwnTeamNotFound
		}
		return nil, errors.Internal(fmt.Errorf("find own team: %w", err))
	}
	return team, nil
}

// ListTeams returns one page of teams matching query.
func (s *teamService) ListTeams(ctx context.Context, query ListQuery) (*TeamList, error) {
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}

	teams, total, err := s.teams.List(ctx, filter)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("list teams: %w", err))
	}
	stats, err := s.GetRegistrationStats(ctx)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []model.Team{}
	}
	return &TeamList{
		Teams:      teams,
		Pagination: model.NewPagination(total, filter.Page, filter.Limit),
		Stats:      stats,
	}, nil
}

// buildFilter applies list defaults and rejects out of range values.
func buildFilter(q ListQuery) (repository.TeamFilter, error) {
	filter := repository.TeamFilter{
		Search:   q.Search,
		Status:   q.Status,
		SortBy:   q.SortBy,
		SortDesc: q.SortOrder != "asc",
		Page:     q.Page,
		Limit:    q.Limit,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.SortBy == "" {
		filter.SortBy = "submittedAt"
	}

	var fields []errors.FieldError
	if filter.Page < 1 {
		fields = append(fields, errors.FieldError{Field: "page", Message: messageFor("page", "min"), Value: q.Page})
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		fields = append(fields, errors.FieldError{Field: "limit", Message: messageFor("limit", "max"), Value: q.Limit})
	}
	if len([]rune(filter.Search)) > 100 {
		fields = append(fields, errors.FieldError{Field: "search", Message: messageFor("search", "max"), Value: q.Search})
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields = append(fields, errors.FieldError{Field: "status", Message: messageFor("status", "oneof"), Value: string(q.Status)})
	}
	if !repository.IsSortField(filter.SortBy) {
		fields = append(fields, errors.FieldError{Field: "sortBy", Message: messageFor("sortBy", "oneof"), Value: q.SortBy})
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		fields = append(fields, errors.FieldError{Field: "sortOrder", Message: messageFor("sortOrder", "oneof"), Value: q.SortOrder})
	}
	if len(fields) > 0 {
		return filter, errors.Validation(ValidationFailedMessage, fields...)
	}
	return filter, nil
}

// GetRegistrationStats reads the live team count. It never uses the cache.
func (s *teamService) GetRegistrationStats(ctx context.Context) (model.RegistrationStats, error) {
	total, err := s.teams.Count(ctx)
	if err != nil {
		return model.RegistrationStats{}, errors.Internal(fmt.Errorf("count teams: %w", err))
	}
	return model.NewRegistrationStats(total, s.maxTeams), nil
}

// GetStatusReport returns the public status payload, cached briefly in redis.
func (s *teamService) GetStatusReport(ctx context.Context) (*model.StatusReport, error) {
	var cached model.StatusReport
	if s.cache.GetJSON(ctx, statusCacheKey, &cached) {
		return &cached, nil
	}

	stats, err := s.GetRegistrationStats(ctx)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.teams.CountByStatus(ctx)
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("count teams by status: %w", err))
	}
	now := s.now()
	recent, err := s.teams.CountSubmittedSince(ctx, now.Add(-recentWindow))
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("count recent teams: %w", err))
	}

	report := &model.StatusReport{
		Registration:        stats,
		StatusBreakdown:     breakdown,
		RecentRegistrations: recent,
		LastUpdated:         now.UTC(),
	}
	_ = s.cache.SetJSON(ctx, statusCacheKey, report, statusCacheTTL)
	return report, nil
}

func (s *teamService) invalidateStatus(ctx context.Context) {
	_ = s.cache.Delete(ctx, statusCacheKey)
}

// ExportCSV writes every team, newest submission first, as CSV.
func (s *teamService) ExportCSV(ctx context.Context, w io.Writer) error {
	teams, err := s.teams.ListAll(ctx)
	if err != nil {
		return errors.Internal(fmt.Errorf("list teams for export: %w", err))
	}
	if err := WriteTeamsCSV(w, teams); err != nil {
		return errors.Internal(fmt.Errorf("write csv: %w", err))
	}
	return nil
}

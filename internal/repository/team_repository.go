package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackathon/internal/model"
)

// Sort fields accepted by List, mapped to columns.
var sortColumns = map[string]string{
	"teamName":    "team_name_key",
	"submittedAt": "submitted_at",
	"status":      "status",
}

// IsSortField reports whether field may be used as TeamFilter.SortBy.
func IsSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// TeamFilter selects, orders and pages a team listing.
type TeamFilter struct {
	Search   string
	Status   model.TeamStatus
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// TeamRepository defines team persistence operations.
type TeamRepository interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (model.StatusBreakdown, error)
	CountSubmittedSince(ctx context.Context, since time.Time) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) (*model.Team, error)
	NameTaken(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	FindMemberConflicts(ctx context.Context, emails, usns []string, excludeID *uuid.UUID) ([]model.Member, error)
	CreateWithRegistrationNumber(ctx context.Context, team *model.Team, maxTeams int64, year int) error
	Update(ctx context.Context, id uuid.UUID, changes TeamChanges) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TeamStatus) (*model.Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TeamFilter) ([]model.Team, int64, error)
	ListAll(ctx context.Context) ([]model.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Count returns the total number of teams.
func (r *teamRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Team{}).Count(&total).Error
	return total, err
}

// CountByStatus groups teams by status.
func (r *teamRepository) CountByStatus(ctx context.Context) (model.StatusBreakdown, error) {
	var rows []struct {
		Status model.TeamStatus
		Count  int64
	}
	var breakdown model.StatusBreakdown
	err := r.db.WithContext(ctx).Model(&model.Team{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return breakdown, err
	}
	for _, row := range rows {
		switch row.Status {
		case model.TeamStatusRegistered:
			breakdown.Registered = row.Count
		case model.TeamStatusConfirmed:
			breakdown.Confirmed = row.Count
		case model.TeamStatusCancelled:
			breakdown.Cancelled = row.Count
		}
	}
	return breakdown, nil
}

// CountSubmittedSince counts teams submitted at or after since.
func (r *teamRepository) CountSubmittedSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Team{}).
		Where("submitted_at >= ?", since).
		Count(&total).Error
	return total, err
}

// FindByID finds a team with its members.
func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Preload("Members", orderedMembers).
		Where("id = ?", id).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByOwner finds the team registered by userID.
func (r *teamRepository) FindByOwner(ctx context.Context, userID uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Preload("Members", orderedMembers).
		Where("registered_by = ?", userID).
		Order("submitted_at ASC").
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// NameTaken reports whether another team already uses name, ignoring case.
func (r *teamRepository) NameTaken(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Team{}).Where("team_name_key = ?", model.TeamNameKey(name))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// FindMemberConflicts returns every stored member, outside excludeID, whose email or USN
// is among the candidates. Candidates must already be normalized.
func (r *teamRepository) FindMemberConflicts(ctx context.Context, emails, usns []string, excludeID *uuid.UUID) ([]model.Member, error) {
	if len(emails) == 0 && len(usns) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Model(&model.Member{})
	switch {
	case len(emails) > 0 && len(usns) > 0:
		q = q.Where("(email IN ? OR usn IN ?)", emails, usns)
	case len(emails) > 0:
		q = q.Where("email IN ?", emails)
	default:
		q = q.Where("usn IN ?", usns)
	}
	if excludeID != nil {
		q = q.Where("team_id <> ?", *excludeID)
	}
	var members []model.Member
	if err := q.Order("team_id ASC, position ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CreateWithRegistrationNumber inserts team and its members inside one transaction that
// locks the year's counter row, re-checks capacity and assigns the next registration number.
// Concurrent registrations serialize on the counter row.
func (r *teamRepository) CreateWithRegistrationNumber(ctx context.Context, team *model.Team, maxTeams int64, year int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter, err := lockCounter(tx, year)
		if err != nil {
			return fmt.Errorf("lock registration counter: %w", err)
		}

		var total int64
		if err := tx.Model(&model.Team{}).Count(&total).Error; err != nil {
			return fmt.Errorf("count teams: %w", err)
		}
		if total >= maxTeams {
			return ErrCapacityReached
		}

		counter.Value++
		if err := tx.Model(counter).Update("value", counter.Value).Error; err != nil {
			return fmt.Errorf("advance registration counter: %w", err)
		}

		team.RegistrationNumber = model.FormatRegistrationNumber(year, counter.Value)
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return err
		}
		return insertMembers(tx, team.ID, team.Members)
	})
}

// lockCounter returns the counter row for year under a row lock, creating it on first use.
// A fresh counter starts from the highest sequence already issued for that year.
func lockCounter(tx *gorm.DB, year int) (*model.RegistrationCounter, error) {
	var counter model.RegistrationCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&counter).Error
	if err == nil {
		return &counter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seed, err := highestIssuedSequence(tx, year)
	if err != nil {
		return nil, err
	}
	fresh := model.RegistrationCounter{Year: year, Value: seed}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("year = ?", year).First(&counter).Error; err != nil {
		return nil, err
	}
	return &counter, nil
}

func highestIssuedSequence(tx *gorm.DB, year int) (int, error) {
	prefix := model.RegistrationPrefix(year)
	var numbers []string
	if err := tx.Model(&model.Team{}).
		Where("registration_number LIKE ?", prefix+"%").
		Pluck("registration_number", &numbers).Error; err != nil {
		return 0, err
	}
	highest := 0
	for _, number := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(number, prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

// TeamChanges lists what Update writes. Columns not named here are left alone.
type TeamChanges struct {
	TeamName    string
	ProjectIdea *string
	// Status is written only when set.
	Status *model.TeamStatus
	// Members replaces the member list when non-nil.
	Members []model.Member
	// RequireStatus makes the write conditional on the stored status.
	RequireStatus *model.TeamStatus
}

// Update writes changes to team id under a row lock. When RequireStatus is set and the
// stored status differs, nothing is written and ErrStatusChanged is returned.
func (r *teamRepository) Update(ctx context.Context, id uuid.UUID, changes TeamChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ?", id).
			First(&current).Error; err != nil {
			return err
		}
		if changes.RequireStatus != nil && current.Status != *changes.RequireStatus {
			return ErrStatusChanged
		}

		columns := map[string]interface{}{
			"team_name":     changes.TeamName,
			"team_name_key": model.TeamNameKey(changes.TeamName),
			"project_idea":  changes.ProjectIdea,
			"updated_at":    time.Now(),
		}
		if changes.Status != nil {
			columns["status"] = *changes.Status
		}
		write := tx.Model(&model.Team{}).Where("id = ?", id)
		if changes.RequireStatus != nil {
			write = write.Where("status = ?", *changes.RequireStatus)
		}
		if err := write.UpdateColumns(columns).Error; err != nil {
			return err
		}

		if changes.Members == nil {
			return nil
		}
		if err := tx.Where("team_id = ?", id).Delete(&model.Member{}).Error; err != nil {
			return err
		}
		return insertMembers(tx, id, changes.Members)
	})
}

// insertMembers writes members as plain inserts so unique email and USN
// violations surface as errors instead of upserts.
func insertMembers(tx *gorm.DB, teamID uuid.UUID, members []model.Member) error {
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].ID = 0
		members[i].TeamID = teamID
		members[i].Position = i
	}
	return tx.Create(&members).Error
}

// UpdateStatus sets the status of a team and returns the updated record.
func (r *teamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TeamStatus) (*model.Team, error) {
	res := r.db.WithContext(ctx).Model(&model.Team{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes a team and its members.
func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&model.Member{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Team{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns one page of teams matching filter and the total match count.
func (r *teamRepository) List(ctx context.Context, filter TeamFilter) ([]model.Team, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Model(&model.Team{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns["submittedAt"]
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var teams []model.Team
	err := r.filtered(ctx, filter).
		Preload("Members", orderedMembers).
		Order(fmt.Sprintf("%s %s, id ASC", column, direction)).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&teams).Error
	if err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// filtered builds a fresh query with the search and status conditions of filter.
func (r *teamRepository) filtered(ctx context.Context, filter TeamFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Team{})
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(filter.Search))) + "%"
		memberMatch := r.db.Model(&model.Member{}).Select("team_id").
			Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!' OR LOWER(usn) LIKE ? ESCAPE '!')",
				pattern, pattern, pattern)
		q = q.Where("(LOWER(team_name) LIKE ? ESCAPE '!' OR LOWER(registration_number) LIKE ? ESCAPE '!' OR id IN (?))",
			pattern, pattern, memberMatch)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// escapeLike neutralizes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// ListAll returns every team, newest submission first.
func (r *teamRepository) ListAll(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.WithContext(ctx).Preload("Members", orderedMembers).
		Order("submitted_at DESC, id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

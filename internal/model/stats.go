package model

import "time"

// RegistrationStats summarises capacity.
type RegistrationStats struct {
	TotalTeams     int64 `json:"totalTeams"`
	MaxTeams       int64 `json:"maxTeams"`
	RemainingSlots int64 `json:"remainingSlots"`
	IsOpen         bool  `json:"isOpen"`
}

// NewRegistrationStats derives remaining slots and openness from the current count.
func NewRegistrationStats(totalTeams, maxTeams int64) RegistrationStats {
	remaining := maxTeams - totalTeams
	if remaining < 0 {
		remaining = 0
	}
	return RegistrationStats{
		TotalTeams:     totalTeams,
		MaxTeams:       maxTeams,
		RemainingSlots: remaining,
		IsOpen:         remaining > 0,
	}
}

// StatusBreakdown counts teams per status.
type StatusBreakdown struct {
	Registered int64 `json:"registered"`
	Confirmed  int64 `json:"confirmed"`
	Cancelled  int64 `json:"cancelled"`
}

// StatusReport is the public registration status payload.
type StatusReport struct {
	Registration        RegistrationStats `json:"registration"`
	StatusBreakdown     StatusBreakdown   `json:"statusBreakdown"`
	RecentRegistrations int64             `json:"recentRegistrations"`
	LastUpdated         time.Time         `json:"lastUpdated"`
}

// Pagination is the page metadata returned with team listings.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata from a total count.
func NewPagination(totalCount int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((totalCount + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hackathon/internal/db"
	"hackathon/internal/model"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// NewDB opens a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	gdb, err := db.NewSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// Member builds a valid member whose email and USN derive from n.
func Member(n int) model.Member {
	return model.Member{
		Name:     fmt.Sprintf("Member %s", string(rune('A'+n%26))),
		Email:    fmt.Sprintf("member%d@example.com", n),
		Phone:    "9876543210",
		Branch:   "Computer Science",
		USN:      fmt.Sprintf("1AB21CS%03d", n),
		Semester: "5",
		College:  "Example Institute of Technology",
	}
}

// Team builds a team named name with members built from the given seeds.
func Team(name string, seeds ...int) *model.Team {
	team := &model.Team{TeamName: name}
	for _, n := range seeds {
		team.Members = append(team.Members, Member(n))
	}
	return team
}

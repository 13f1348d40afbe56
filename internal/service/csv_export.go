package service

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hackathon/internal/model"
)

// CSVFilename is the attachment name used for exports.
const CSVFilename = "hackathon-teams.csv"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

var memberColumns = []string{"Name", "Email", "Phone", "Branch", "USN", "Semester", "College"}

// CSVHeader returns the fixed export header.
func CSVHeader() []string {
	header := []string{
		"Registration Number",
		"Team Name",
		"Status",
		"Project Idea",
		"Submitted At",
		"Updated At",
		"Total Members",
	}
	for i := 1; i <= model.MaxMembers; i++ {
		for _, col := range memberColumns {
			header = append(header, fmt.Sprintf("Member %d %s", i, col))
		}
	}
	return header
}

func csvRow(team model.Team) []string {
	idea := ""
	if team.ProjectIdea != nil {
		idea = *team.ProjectIdea
	}
	row := []string{
		team.RegistrationNumber,
		team.TeamName,
		string(team.Status),
		idea,
		isoTime(team.SubmittedAt),
		isoTime(team.UpdatedAt),
		strconv.Itoa(len(team.Members)),
	}
	for i := 0; i < model.MaxMembers; i++ {
		if i < len(team.Members) {
			m := team.Members[i]
			row = append(row, m.Name, m.Email, m.Phone, m.Branch, m.USN, m.Semester, m.College)
			continue
		}
		row = append(row, make([]string, len(memberColumns))...)
	}
	return row
}

func isoTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// WriteTeamsCSV writes the header and one row per team. Every field is quoted and
// embedded quotes are doubled. Lines are separated by "\n" with no trailing newline.
func WriteTeamsCSV(w io.Writer, teams []model.Team) error {
	bw := bufio.NewWriter(w)
	writeCSVLine(bw, CSVHeader())
	for _, team := range teams {
		bw.WriteByte('\n')
		writeCSVLine(bw, csvRow(team))
	}
	return bw.Flush()
}

func writeCSVLine(w *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
}

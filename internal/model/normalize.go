package model

import "strings"

// NormalizeEmail is the canonical stored and queried form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUSN is the canonical stored and queried form of a USN.
func NormalizeUSN(usn string) string {
	return strings.ToUpper(strings.TrimSpace(usn))
}

// TeamNameKey is the case-insensitive identity of a team name.
func TeamNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize trims every member field and applies the email and USN canonical forms.
func (m *Member) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = NormalizeEmail(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Branch = strings.TrimSpace(m.Branch)
	m.USN = NormalizeUSN(m.USN)
	m.Semester = strings.TrimSpace(m.Semester)
	m.College = strings.TrimSpace(m.College)
}

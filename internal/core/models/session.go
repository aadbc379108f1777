package models

import (
	"errors"
	"strings"
	"time"
)

// Status is the server-side lifecycle of a workspace session.
// Transitions only move forward: Collaborating -> Certified -> Licensing.
type Status string

const (
	StatusCollaborating Status = "COLLABORATING"
	StatusCertified     Status = "CERTIFIED"
	StatusLicensing     Status = "LICENSING"
)

// ParseStatus maps the backend's status string onto a Status. Unknown or
// empty values are treated as Collaborating.
func ParseStatus(s string) Status {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CERTIFIED":
		return StatusCertified
	case "LICENSING":
		return StatusLicensing
	default:
		return StatusCollaborating
	}
}

func (s Status) rank() int {
	switch s {
	case StatusCertified:
		return 1
	case StatusLicensing:
		return 2
	default:
		return 0
	}
}

// CanAdvanceTo reports whether moving from s to next is a forward step.
func (s Status) CanAdvanceTo(next Status) bool {
	return next.rank() > s.rank()
}

// Session represents one authorship workspace
type Session struct {
	ID           string
	Name         string
	Status       Status
	CurrentScore int    // Normalized 0-100
	OriginHash   string // Hash of the seed content at creation
	SeedContent  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks if the session has required fields
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.CurrentScore < 0 || s.CurrentScore > 100 {
		return errors.New("current_score must be between 0 and 100")
	}
	return nil
}

// Advance moves the session to next if that is a forward transition.
// It returns false and leaves the status untouched otherwise.
func (s *Session) Advance(next Status) bool {
	if !s.Status.CanAdvanceTo(next) {
		return false
	}
	s.Status = next
	return true
}

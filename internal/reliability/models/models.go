package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout renders submission dates on the wire.
const DateLayout = "2006.01.02"

// PhoneRequest is the body of POST /reliability/phone. Number is a pointer so
// that a missing field and an empty string are reported differently.
type PhoneRequest struct {
	Number *string `json:"number" validate:"required,phone"`
}

// Submission is one row of the externally owned history table.
type Submission struct {
	ID           string
	Date         time.Time
	PhoneHash    string
	NameHash     string
	BirthdayHash string
}

// PersonKey groups submissions that describe the same person.
func (s Submission) PersonKey() string {
	return s.NameHash + s.BirthdayHash
}

// Period spans the earliest and latest submission for a phone hash.
type Period struct {
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

type periodJSON struct {
	RegisteredAt string `json:"registered_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodJSON{
		RegisteredAt: p.RegisteredAt.Format(DateLayout),
		UpdatedAt:    p.UpdatedAt.Format(DateLayout),
	})
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var raw periodJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	registered, err := time.Parse(DateLayout, raw.RegisteredAt)
	if err != nil {
		return fmt.Errorf("registered_at: %w", err)
	}
	updated, err := time.Parse(DateLayout, raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	p.RegisteredAt, p.UpdatedAt = registered, updated
	return nil
}

// Days is the whole number of days between the two dates.
func (p Period) Days() int {
	return DaysBetween(p.RegisteredAt, p.UpdatedAt)
}

// Reliability answers whether a phone number shows suspicious long-span reuse.
// Period is nil when the number has no history.
type Reliability struct {
	Status bool    `json:"status"`
	Period *Period `json:"period"`
}

// DaysBetween counts calendar days from a to b, ignoring time of day.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

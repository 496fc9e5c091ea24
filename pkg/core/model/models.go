package model

import "time"

type Locale string

const (
	LocaleFI Locale = "fi"
	LocaleEN Locale = "en"
)

func (l Locale) IsValid() bool {
	return l == LocaleFI || l == LocaleEN
}

// LocalizedText holds the Finnish and English renderings of a label.
type LocalizedText struct {
	FI string
	EN string
}

// In returns the text for the given locale, falling back to Finnish
// when the requested rendering is empty.
func (t LocalizedText) In(locale Locale) string {
	if locale == LocaleEN && t.EN != "" {
		return t.EN
	}
	return t.FI
}

// Program is the per-event volunteer program aggregate. It owns the
// shifts and, transitively, all bookings under them. There is exactly
// one program per event.
type Program struct {
	ID                     string
	EventID                string
	Enabled                bool
	InfoText               LocalizedText
	ShowLinkInEvent        bool
	RequireDifferentTimes  bool
	RequiredForReservation bool
	AdminIDs               []string
	CreatedAt              time.Time
}

// IsAdmin reports whether the given volunteer is in the program's
// responsible-admin set.
func (p *Program) IsAdmin(volunteerID string) bool {
	for _, id := range p.AdminIDs {
		if id == volunteerID {
			return true
		}
	}
	return false
}

// Shift is an organizer-defined span of time for one task, subdivided
// into bookable slots of Interval length. The final partial slot of an
// unevenly dividing span is discarded, never rounded up.
type Shift struct {
	ID               string
	ProgramID        string
	TaskTypeID       string
	Start            time.Time
	End              time.Time
	Interval         time.Duration
	ResponsibleID    string // empty if no responsible volunteer
	ChatChannel      string // empty if no chat channel
	BookingsDisabled bool
}

// Slot is one bookable unit of time within a shift. Slots are derived
// from the owning shift on demand and never persisted, so re-timing a
// shift automatically invalidates old slot identities.
type Slot struct {
	ShiftID string
	Start   time.Time
	End     time.Time
}

// Booking is a volunteer's claim on one slot of one shift, keyed by
// the slot's start time. At most one booking exists per
// (shift, slot start) at any time.
type Booking struct {
	ID          string
	ShiftID     string
	SlotStart   time.Time
	VolunteerID string
	Comment     string
	CreatedAt   time.Time
}

// TaskType is an externally owned catalog entry describing one kind of
// volunteer task. Immutable from this system's point of view.
type TaskType struct {
	ID          string
	Name        LocalizedText
	Description LocalizedText
	ActiveOnly  bool // restricted to active members
}

// Volunteer is a member directory entry, referenced by id only.
type Volunteer struct {
	ID     string
	Name   string
	Email  string
	Locale Locale
	Active bool
}

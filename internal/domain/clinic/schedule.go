package clinic

import (
	"fmt"
	"strings"
)

// ScheduleBook holds a doctor's recorded time slots, grouped by date. Dates
// and the times within a date keep insertion order and repeats are kept.
//
// The recorded times are the doctor's booked commitments, yet the booking flow
// offers exactly these times for selection and re-appends the chosen one.
// That inverted notion of "available" is kept so existing booking indices stay
// stable; IsAvailable answers the opposite question (is the time still free).
type ScheduleBook struct {
	dates []string
	times map[string][]string
}

func NewScheduleBook() *ScheduleBook {
	return &ScheduleBook{times: make(map[string][]string)}
}

// SlotOption is one selectable entry of AvailableSlots. Index is 1-based.
type SlotOption struct {
	Time  string `json:"time"`
	Index int    `json:"index"`
}

// DaySchedule lists one date's recorded times with their selection indices.
type DaySchedule struct {
	Date  string       `json:"date"`
	Times []SlotOption `json:"times"`
}

// AddSlot appends at to the sequence recorded for date.
func (b *ScheduleBook) AddSlot(date, at string) error {
	date = strings.TrimSpace(date)
	at = strings.TrimSpace(at)
	if date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if at == "" {
		return fmt.Errorf("%w: time is required", ErrValidation)
	}
	if _, ok := b.times[date]; !ok {
		b.dates = append(b.dates, date)
	}
	b.times[date] = append(b.times[date], at)
	return nil
}

// IsAvailable reports whether date has at least one recorded slot and at is
// not among them.
func (b *ScheduleBook) IsAvailable(date, at string) bool {
	at = strings.TrimSpace(at)
	times := b.times[strings.TrimSpace(date)]
	if len(times) == 0 {
		return false
	}
	for _, t := range times {
		if t == at {
			return false
		}
	}
	return true
}

// AvailableSlots enumerates the times recorded for date in storage order.
// Dates are matched after trimming, the same way AddSlot stores them.
func (b *ScheduleBook) AvailableSlots(date string) []SlotOption {
	times := b.times[strings.TrimSpace(date)]
	out := make([]SlotOption, len(times))
	for i, t := range times {
		out[i] = SlotOption{Time: t, Index: i + 1}
	}
	return out
}

// Resolve maps a 1-based display index for date onto the recorded time.
func (b *ScheduleBook) Resolve(date string, index int) (string, error) {
	date = strings.TrimSpace(date)
	slots := b.AvailableSlots(date)
	if len(slots) == 0 {
		return "", fmt.Errorf("%w: no slots recorded on %s", ErrInvalidSelection, date)
	}
	if index < 1 || index > len(slots) {
		return "", fmt.Errorf("%w: slot %d out of range 1-%d", ErrInvalidSelection, index, len(slots))
	}
	return slots[index-1].Time, nil
}

// Dates returns the recorded dates in the order they were first added.
func (b *ScheduleBook) Dates() []string {
	out := make([]string, len(b.dates))
	copy(out, b.dates)
	return out
}

// Times returns a copy of the times recorded for date.
func (b *ScheduleBook) Times(date string) []string {
	times := b.times[strings.TrimSpace(date)]
	out := make([]string, len(times))
	copy(out, times)
	return out
}

// Days returns the whole book as indexed per-date listings.
func (b *ScheduleBook) Days() []DaySchedule {
	days := make([]DaySchedule, 0, len(b.dates))
	for _, d := range b.dates {
		days = append(days, DaySchedule{Date: d, Times: b.AvailableSlots(d)})
	}
	return days
}

// file: internals/features/allocation/engine/window.go
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"exam_allocation_backend/internals/helpers/dbtime"
)

const DateLayout = "2006-01-02"

// NormalizeDate memotong t ke tengah malam waktu lokal institusi.
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// DateKey is the date-only key used for every same-day comparison.
func DateKey(t time.Time) string { return t.Format(DateLayout) }

// ParseDate accepts "YYYY-MM-DD" (interpreted in loc) or RFC3339.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return NormalizeDate(t, loc), nil
}

// NormalizeClock converts any accepted time-of-day notation to 24-hour "HH:mm".
func NormalizeClock(s string) (string, error) {
	tod, err := dbtime.Parse(s)
	if err != nil {
		return "", err
	}
	return tod.Clock(), nil
}

// Window is a half-open [Start, End) interval of "HH:mm" strings.
type Window struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

func NewWindow(start, end string) (Window, error) {
	s, err := NormalizeClock(start)
	if err != nil {
		return Window{}, &ValidationError{Field: "start_time", Reason: err.Error()}
	}
	e, err := NormalizeClock(end)
	if err != nil {
		return Window{}, &ValidationError{Field: "end_time", Reason: err.Error()}
	}
	if s >= e {
		return Window{}, &ValidationError{Field: "end_time", Reason: fmt.Sprintf("%s must be after %s", e, s)}
	}
	return Window{Start: s, End: e}, nil
}

// Overlaps reports a.Start < b.End && b.Start < a.End. Touching endpoints do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

func (w Window) String() string { return w.Start + "-" + w.End }

// SlotKey identifies one room/date/time slot needing exactly one invigilator.
type SlotKey struct {
	RoomID uuid.UUID
	Date   string
	Window Window
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s %s", k.RoomID, k.Date, k.Window)
}

/* =========================
   Interval index
========================= */

type IntervalEntry[V any] struct {
	Window Window
	Value  V
}

// IntervalIndex stores windows per key and date so overlap lookups do not
// need a fresh query for every candidate.
type IntervalIndex[K comparable, V any] struct {
	entries map[K]map[string][]IntervalEntry[V]
}

func NewIntervalIndex[K comparable, V any]() *IntervalIndex[K, V] {
	return &IntervalIndex[K, V]{entries: make(map[K]map[string][]IntervalEntry[V])}
}

func (ix *IntervalIndex[K, V]) Add(key K, date string, w Window, v V) {
	byDate, ok := ix.entries[key]
	if !ok {
		byDate = make(map[string][]IntervalEntry[V])
		ix.entries[key] = byDate
	}
	byDate[date] = append(byDate[date], IntervalEntry[V]{Window: w, Value: v})
}

// Overlapping returns entries on the same key and date whose window overlaps w.
func (ix *IntervalIndex[K, V]) Overlapping(key K, date string, w Window) []IntervalEntry[V] {
	var out []IntervalEntry[V]
	for _, e := range ix.entries[key][date] {
		if e.Window.Overlaps(w) {
			out = append(out, e)
		}
	}
	return out
}

func (ix *IntervalIndex[K, V]) Keys() []K {
	out := make([]K, 0, len(ix.entries))
	for k := range ix.entries {
		out = append(out, k)
	}
	return out
}

// Dates returns every date recorded for key together with its entries.
func (ix *IntervalIndex[K, V]) Dates(key K) map[string][]IntervalEntry[V] {
	return ix.entries[key]
}

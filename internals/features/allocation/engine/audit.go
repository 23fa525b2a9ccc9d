// file: internals/features/allocation/engine/audit.go
package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Violation struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Detail  string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s on %s: %s", v.Kind, v.Subject, v.Date, v.Detail)
}

// AuditRoomCapacity checks, for every allocation, that the occupants of all
// allocations in the same room overlapping it on the same date fit the room.
func AuditRoomCapacity(rooms []Room, allocations []RoomAllocation) []Violation {
	capacity := lo.SliceToMap(rooms, func(r Room) (uuid.UUID, int) { return r.ID, r.Capacity })
	usage := NewIntervalIndex[uuid.UUID, int]()
	for _, a := range allocations {
		usage.Add(a.RoomID, DateKey(a.Date), a.Window, len(a.Occupants))
	}

	var out []Violation
	seen := map[string]bool{}
	for _, a := range allocations {
		date := DateKey(a.Date)
		load := lo.SumBy(usage.Overlapping(a.RoomID, date, a.Window), func(e IntervalEntry[int]) int { return e.Value })
		c, known := capacity[a.RoomID]
		if known && load <= c {
			continue
		}
		tag := a.RoomID.String() + date + a.Window.String()
		if seen[tag] {
			continue
		}
		seen[tag] = true
		detail := fmt.Sprintf("%d occupants overlap %s, capacity %d", load, a.Window, c)
		if !known {
			detail = "room not found in directory"
		}
		out = append(out, Violation{Kind: "capacity", Subject: "room " + a.RoomID.String(), Date: date, Detail: detail})
	}
	return out
}

// AuditInvigilations reports faculty booked into overlapping windows on the same
// date under different slot keys. Identical keys are legitimate reuse.
func AuditInvigilations(rows []Invigilation) []Violation {
	byFaculty := lo.GroupBy(rows, func(i Invigilation) uuid.UUID { return i.FacultyID })

	var out []Violation
	for fid, list := range byFaculty {
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				a, b := list[i], list[j]
				if DateKey(a.Date) != DateKey(b.Date) || a.Key() == b.Key() || !a.Window.Overlaps(b.Window) {
					continue
				}
				out = append(out, Violation{
					Kind:    "double_booking",
					Subject: "faculty " + fid.String(),
					Date:    DateKey(a.Date),
					Detail:  fmt.Sprintf("room %s %s overlaps room %s %s", a.RoomID, a.Window, b.RoomID, b.Window),
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b Violation) int { return strings.Compare(a.String(), b.String()) })
	return out
}

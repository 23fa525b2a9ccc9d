// file: internals/features/allocation/engine/notices.go
package engine

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// BuildNotices groups invigilations per faculty into one schedule message each.
// examName is used only in the subject line.
func BuildNotices(examName string, invigilations []Invigilation, faculty []Faculty, rooms []Room) []Notice {
	facultyByID := lo.SliceToMap(faculty, func(f Faculty) (uuid.UUID, Faculty) { return f.ID, f })
	roomByID := lo.SliceToMap(rooms, func(r Room) (uuid.UUID, Room) { return r.ID, r })

	// one line per slot; a reused slot shared by several subjects is listed once
	perFaculty := lo.GroupBy(
		lo.UniqBy(invigilations, func(i Invigilation) string { return i.FacultyID.String() + "|" + i.Key().String() }),
		func(i Invigilation) uuid.UUID { return i.FacultyID },
	)

	ids := lo.Keys(perFaculty)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

	out := make([]Notice, 0, len(ids))
	for _, id := range ids {
		rows := perFaculty[id]
		slices.SortFunc(rows, func(a, b Invigilation) int {
			return cmp.Or(
				strings.Compare(DateKey(a.Date), DateKey(b.Date)),
				strings.Compare(a.Window.Start, b.Window.Start),
				strings.Compare(a.Window.End, b.Window.End),
			)
		})

		f := facultyByID[id]
		name := f.Name
		if name == "" {
			name = rows[0].FacultyName
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Dear %s,\n\nYou have been assigned the following invigilation duties", name)
		if examName != "" {
			fmt.Fprintf(&b, " for %s", examName)
		}
		b.WriteString(":\n")

		byDate := lo.GroupBy(rows, func(i Invigilation) string { return DateKey(i.Date) })
		dates := lo.Keys(byDate)
		slices.Sort(dates)
		for _, d := range dates {
			fmt.Fprintf(&b, "\n%s\n", d)
			for _, r := range byDate[d] {
				room := roomByID[r.RoomID].Name
				if room == "" {
					room = r.RoomID.String()
				}
				fmt.Fprintf(&b, "  - %s to %s, room %s\n", r.Window.Start, r.Window.End, room)
			}
		}
		b.WriteString("\nPlease report to the examination cell 15 minutes before each slot.\n")

		subject := "Invigilation schedule"
		if examName != "" {
			subject += ": " + examName
		}
		out = append(out, Notice{
			FacultyID:   id,
			Recipient:   f.Email,
			FacultyName: name,
			Subject:     subject,
			Body:        b.String(),
		})
	}
	return out
}

// LogNotifier only logs; delivery belongs to the mail collaborator.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, notices []Notice) error {
	for _, n := range notices {
		log.Printf("[NOTICE] to=%q faculty=%s subject=%q lines=%d",
			n.Recipient, n.FacultyID, n.Subject, strings.Count(n.Body, "\n"))
	}
	return nil
}

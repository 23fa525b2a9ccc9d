// file: internals/features/allocation/engine/room_allocator.go
package engine

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// OccupantSequence produces count occupant ids starting at the 1-based position start.
type OccupantSequence func(subjectID uuid.UUID, start, count int) []string

// SequentialOccupants: label sintetis "STU-0001", "STU-0002", ...
func SequentialOccupants(_ uuid.UUID, start, count int) []string {
	out := make([]string, count)
	for i := range count {
		out[i] = fmt.Sprintf("STU-%04d", start+i)
	}
	return out
}

type RoomAllocator struct {
	rooms       RoomDirectory
	allocations RoomAllocationStore
	loc         *time.Location
	occupants   OccupantSequence
}

func NewRoomAllocator(rooms RoomDirectory, allocations RoomAllocationStore, loc *time.Location) *RoomAllocator {
	if loc == nil {
		loc = time.UTC
	}
	return &RoomAllocator{
		rooms:       rooms,
		allocations: allocations,
		loc:         loc,
		occupants:   SequentialOccupants,
	}
}

func (ra *RoomAllocator) WithOccupants(seq OccupantSequence) *RoomAllocator {
	if seq != nil {
		ra.occupants = seq
	}
	return ra
}

type AvailabilityRequest struct {
	RoomIDs       []uuid.UUID
	Date          time.Time
	StartTime     string
	EndTime       string
	RequiredSeats int
}

type AvailabilityResult struct {
	AvailableSeats int
	PerRoom        map[uuid.UUID]int
	Date           string
	Window         Window
}

type AllocateRoomsRequest struct {
	ExamID        uuid.UUID
	SubjectID     uuid.UUID
	TotalStudents int
	RoomIDs       []uuid.UUID
	Date          time.Time
	StartTime     string
	EndTime       string
}

/* =========================
   Check availability
========================= */

// CheckAvailability is a pure read: capacity minus overlapping usage, summed over the candidate rooms.
func (ra *RoomAllocator) CheckAvailability(ctx context.Context, req AvailabilityRequest) (AvailabilityResult, error) {
	if req.RequiredSeats <= 0 {
		return AvailabilityResult{}, validationErr("required_seats", "must be positive, got %d", req.RequiredSeats)
	}
	date, w, err := ra.normalize(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return AvailabilityResult{}, err
	}
	rooms, err := ra.loadRooms(ctx, req.RoomIDs)
	if err != nil {
		return AvailabilityResult{}, err
	}
	remaining, err := ra.remainingSeats(ctx, rooms, date, w)
	if err != nil {
		return AvailabilityResult{}, err
	}

	total := lo.Sum(lo.Values(remaining))
	res := AvailabilityResult{
		AvailableSeats: total,
		PerRoom:        remaining,
		Date:           DateKey(date),
		Window:         w,
	}
	if total < req.RequiredSeats {
		return res, &CapacityError{
			Required:  req.RequiredSeats,
			Available: total,
			Shortfall: req.RequiredSeats - total,
			Date:      res.Date,
			Window:    w,
		}
	}
	return res, nil
}

/* =========================
   Allocate
========================= */

// Allocate packs TotalStudents into the candidate rooms, largest room first.
// Rows are persisted as they are produced; on failure the caller must roll back.
func (ra *RoomAllocator) Allocate(ctx context.Context, req AllocateRoomsRequest) ([]RoomAllocation, error) {
	if req.TotalStudents <= 0 {
		return nil, validationErr("total_students", "must be positive, got %d", req.TotalStudents)
	}
	date, w, err := ra.normalize(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	rooms, err := ra.loadRooms(ctx, req.RoomIDs)
	if err != nil {
		return nil, err
	}
	remaining, err := ra.remainingSeats(ctx, rooms, date, w)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rooms, func(a, b Room) int { return b.Capacity - a.Capacity })

	toPlace := req.TotalStudents
	next := 1
	out := make([]RoomAllocation, 0, len(rooms))
	for _, room := range rooms {
		if toPlace == 0 {
			break
		}
		free := remaining[room.ID]
		if free <= 0 {
			continue
		}
		n := min(toPlace, free)
		alloc := RoomAllocation{
			ID:        uuid.New(),
			ExamID:    req.ExamID,
			SubjectID: req.SubjectID,
			RoomID:    room.ID,
			Occupants: ra.occupants(req.SubjectID, next, n),
			Date:      date,
			Window:    w,
		}
		if err := ra.allocations.Create(ctx, &alloc); err != nil {
			return nil, storageErr("create room allocation", err)
		}
		out = append(out, alloc)
		next += n
		toPlace -= n
	}

	if toPlace > 0 {
		return nil, &CapacityError{
			Required:  req.TotalStudents,
			Available: req.TotalStudents - toPlace,
			Shortfall: toPlace,
			Date:      DateKey(date),
			Window:    w,
		}
	}

	log.Printf("[ALLOC] subject=%s placed %d students in %d rooms on %s %s",
		req.SubjectID, req.TotalStudents, len(out), DateKey(date), w)
	return out, nil
}

/* =========================
   Helpers
========================= */

func (ra *RoomAllocator) normalize(date time.Time, start, end string) (time.Time, Window, error) {
	if date.IsZero() {
		return time.Time{}, Window{}, validationErr("date", "is required")
	}
	w, err := NewWindow(start, end)
	if err != nil {
		return time.Time{}, Window{}, err
	}
	return NormalizeDate(date, ra.loc), w, nil
}

func (ra *RoomAllocator) loadRooms(ctx context.Context, ids []uuid.UUID) ([]Room, error) {
	ids = lo.Uniq(lo.Filter(ids, func(id uuid.UUID, _ int) bool { return id != uuid.Nil }))
	if len(ids) == 0 {
		return nil, validationErr("room_ids", "at least one room is required")
	}
	rooms, err := ra.rooms.ListRooms(ctx, ids)
	if err != nil {
		return nil, storageErr("list rooms", err)
	}
	found := lo.SliceToMap(rooms, func(r Room) (uuid.UUID, Room) { return r.ID, r })
	missing := lo.Filter(ids, func(id uuid.UUID, _ int) bool {
		_, ok := found[id]
		return !ok
	})
	if len(missing) > 0 {
		return nil, validationErr("room_ids", "unknown rooms %v", missing)
	}
	// keep caller order so equal capacities stay in input order after the stable sort
	return lo.Map(ids, func(id uuid.UUID, _ int) Room { return found[id] }), nil
}

func (ra *RoomAllocator) remainingSeats(ctx context.Context, rooms []Room, date time.Time, w Window) (map[uuid.UUID]int, error) {
	ids := lo.Map(rooms, func(r Room, _ int) uuid.UUID { return r.ID })
	existing, err := ra.allocations.ListOverlapping(ctx, ids, date, w)
	if err != nil {
		return nil, storageErr("list overlapping room allocations", err)
	}

	usage := NewIntervalIndex[uuid.UUID, int]()
	for _, a := range existing {
		usage.Add(a.RoomID, DateKey(a.Date), a.Window, len(a.Occupants))
	}

	day := DateKey(date)
	remaining := make(map[uuid.UUID]int, len(rooms))
	for _, r := range rooms {
		used := lo.SumBy(usage.Overlapping(r.ID, day, w), func(e IntervalEntry[int]) int { return e.Value })
		remaining[r.ID] = max(r.Capacity-used, 0)
	}
	return remaining, nil
}

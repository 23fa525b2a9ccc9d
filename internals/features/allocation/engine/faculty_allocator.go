// file: internals/features/allocation/engine/faculty_allocator.go
package engine

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type FacultyAllocator struct {
	roomAllocations RoomAllocationStore
	invigilations   InvigilationStore
	faculty         FacultyDirectory
	rooms           RoomDirectory
	tieBreaker      TieBreaker
	minQuotaHook    MinQuotaHook
}

func NewFacultyAllocator(
	roomAllocations RoomAllocationStore,
	invigilations InvigilationStore,
	faculty FacultyDirectory,
	rooms RoomDirectory,
	tieBreaker TieBreaker,
) *FacultyAllocator {
	if tieBreaker == nil {
		tieBreaker = DefaultTieBreaker()
	}
	return &FacultyAllocator{
		roomAllocations: roomAllocations,
		invigilations:   invigilations,
		faculty:         faculty,
		rooms:           rooms,
		tieBreaker:      tieBreaker,
		minQuotaHook:    LogUnderfilledQuota,
	}
}

// WithMinQuotaHook replaces the under-quota callback; nil disables it.
func (fa *FacultyAllocator) WithMinQuotaHook(h MinQuotaHook) *FacultyAllocator {
	fa.minQuotaHook = h
	return fa
}

type FacultyAllocationResult struct {
	Created        []Invigilation
	Reused         int
	AlreadyStaffed int
	Shortage       bool
	Increments     map[uuid.UUID]int
}

type requiredSlot struct {
	SubjectID uuid.UUID
	Key       SlotKey
	Date      time.Time
}

type subjectSlot struct {
	SubjectID uuid.UUID
	Key       SlotKey
}

/* =========================
   Allocate
========================= */

// Allocate staffs every room slot of the exam with exactly one invigilator.
// Nothing is written unless every slot is staffed.
func (fa *FacultyAllocator) Allocate(ctx context.Context, examID uuid.UUID, candidateIDs []uuid.UUID) (FacultyAllocationResult, error) {
	res := FacultyAllocationResult{Increments: map[uuid.UUID]int{}}

	//** 1) Slot discovery
	slots, err := fa.discoverSlots(ctx, examID)
	if err != nil {
		return res, err
	}
	if len(slots) == 0 {
		return res, validationErr("exam_id", "exam %s has no room allocations to staff", examID)
	}

	//** 2) Reuse pass
	keys := lo.Uniq(lo.Map(slots, func(s requiredSlot, _ int) SlotKey { return s.Key }))
	existing, err := fa.invigilations.ListBySlotKeys(ctx, keys)
	if err != nil {
		return res, storageErr("list invigilations by slot", err)
	}
	staffed := make(map[subjectSlot]bool, len(existing))
	byKey := make(map[SlotKey]Invigilation, len(existing))
	for _, inv := range existing {
		staffed[subjectSlot{inv.SubjectID, inv.Key()}] = true
		if _, ok := byKey[inv.Key()]; !ok {
			byKey[inv.Key()] = inv
		}
	}

	claimed := map[uuid.UUID]bool{}
	var (
		leaders   []requiredSlot
		followers = map[SlotKey][]requiredSlot{}
	)
	for _, s := range slots {
		if staffed[subjectSlot{s.SubjectID, s.Key}] {
			res.AlreadyStaffed++
			continue
		}
		if prev, ok := byKey[s.Key]; ok {
			res.Created = append(res.Created, newInvigilation(examID, s, prev.FacultyID, prev.FacultyName))
			res.Reused++
			claimed[prev.FacultyID] = true
			continue
		}
		if _, ok := followers[s.Key]; ok {
			followers[s.Key] = append(followers[s.Key], s)
			continue
		}
		followers[s.Key] = nil
		leaders = append(leaders, s)
	}

	n := len(leaders)
	if n == 0 {
		return res, fa.persist(ctx, &res)
	}

	//** 3) Eligible pool
	if len(candidateIDs) == 0 {
		return res, validationErr("faculty_ids", "no candidate faculty supplied")
	}
	candidates, err := fa.faculty.ListFaculty(ctx, FacultyFilter{IDs: lo.Uniq(candidateIDs), AvailableOnly: true})
	if err != nil {
		return res, storageErr("list faculty", err)
	}
	groups := map[Designation][]Faculty{}
	for _, f := range candidates {
		if !f.Available || claimed[f.ID] {
			continue
		}
		if f.Designation == DesignationUnknown {
			log.Printf("[ALLOC] faculty %s has no recognised designation, skipped", f.ID)
			continue
		}
		groups[f.Designation] = append(groups[f.Designation], f)
	}

	//** 4-5) Quotas + fairness ordering
	quotas := DesignationQuotas(n)
	var pool, eligible []Faculty
	for _, d := range Designations {
		ordered := OrderByFairness(groups[d], fa.tieBreaker)
		q := quotas[d]
		taken := ordered[:min(len(ordered), q.Max)]
		if len(taken) < q.Min && fa.minQuotaHook != nil {
			fa.minQuotaHook(d, q, len(taken))
		}
		pool = append(pool, taken...)
		eligible = append(eligible, ordered...)
	}
	if len(pool) > n {
		pool = pool[:n]
	}
	res.Shortage = len(pool) < n

	busy, err := fa.loadCommitments(ctx, eligible, leaders)
	if err != nil {
		return res, err
	}
	conflicts := func(f Faculty, s requiredSlot) bool {
		for _, e := range busy.Overlapping(f.ID, s.Key.Date, s.Key.Window) {
			if e.Value != s.Key {
				return true
			}
		}
		return false
	}

	//** 6) Primary assignment
	assigned := make([]*Faculty, n)
	used := map[uuid.UUID]bool{}
	for i, s := range leaders {
		for j := range pool {
			f := pool[j]
			if used[f.ID] || conflicts(f, s) {
				continue
			}
			used[f.ID] = true
			assigned[i] = &pool[j]
			busy.Add(f.ID, s.Key.Date, s.Key.Window, s.Key)
			break
		}
	}

	//** 7-8) Fallback: conflict-checked reuse over the whole eligible list
	if lo.Contains(assigned, nil) {
		if res.Shortage {
			log.Printf("[ALLOC] exam=%s shortage: pool %d < slots %d, falling back", examID, len(pool), n)
		}
		for i, s := range leaders {
			if assigned[i] != nil {
				continue
			}
			_, idx, ok := lo.FindIndexOf(eligible, func(f Faculty) bool { return !conflicts(f, s) })
			if !ok {
				return FacultyAllocationResult{}, &StaffingShortageError{Slot: s.Key, RoomName: fa.roomName(ctx, s.Key.RoomID)}
			}
			assigned[i] = &eligible[idx]
			busy.Add(eligible[idx].ID, s.Key.Date, s.Key.Window, s.Key)
		}
	}

	//** 9) Build rows + ledger
	for i, s := range leaders {
		f := assigned[i]
		res.Created = append(res.Created, newInvigilation(examID, s, f.ID, f.Name))
		res.Increments[f.ID]++
		for _, follower := range followers[s.Key] {
			res.Created = append(res.Created, newInvigilation(examID, follower, f.ID, f.Name))
			res.Reused++
		}
	}

	if err := fa.persist(ctx, &res); err != nil {
		return FacultyAllocationResult{}, err
	}
	log.Printf("[ALLOC] exam=%s staffed %d new slots, reused %d, already staffed %d, shortage=%v",
		examID, n, res.Reused, res.AlreadyStaffed, res.Shortage)
	return res, nil
}

/* =========================
   Helpers
========================= */

func (fa *FacultyAllocator) discoverSlots(ctx context.Context, examID uuid.UUID) ([]requiredSlot, error) {
	allocs, err := fa.roomAllocations.ListByExam(ctx, examID)
	if err != nil {
		return nil, storageErr("list room allocations by exam", err)
	}
	seen := map[subjectSlot]bool{}
	out := make([]requiredSlot, 0, len(allocs))
	for _, a := range allocs {
		k := subjectSlot{a.SubjectID, a.Key()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, requiredSlot{SubjectID: a.SubjectID, Key: a.Key(), Date: a.Date})
	}
	return out, nil
}

// loadCommitments indexes every persisted invigilation of the eligible faculty on the slot dates.
func (fa *FacultyAllocator) loadCommitments(ctx context.Context, eligible []Faculty, slots []requiredSlot) (*IntervalIndex[uuid.UUID, SlotKey], error) {
	busy := NewIntervalIndex[uuid.UUID, SlotKey]()
	if len(eligible) == 0 {
		return busy, nil
	}
	ids := lo.Map(eligible, func(f Faculty, _ int) uuid.UUID { return f.ID })
	dates := lo.UniqBy(lo.Map(slots, func(s requiredSlot, _ int) time.Time { return s.Date }), DateKey)
	rows, err := fa.invigilations.ListByFacultyOnDates(ctx, ids, dates)
	if err != nil {
		return nil, storageErr("list faculty commitments", err)
	}
	for _, r := range rows {
		busy.Add(r.FacultyID, DateKey(r.Date), r.Window, r.Key())
	}
	return busy, nil
}

func (fa *FacultyAllocator) persist(ctx context.Context, res *FacultyAllocationResult) error {
	if len(res.Created) > 0 {
		if err := fa.invigilations.CreateBatch(ctx, res.Created); err != nil {
			return storageErr("create invigilations", err)
		}
	}
	if len(res.Increments) > 0 {
		if err := fa.faculty.IncrementAllocations(ctx, res.Increments); err != nil {
			return storageErr("increment faculty allocations", err)
		}
	}
	return nil
}

func (fa *FacultyAllocator) roomName(ctx context.Context, id uuid.UUID) string {
	if fa.rooms == nil {
		return ""
	}
	rooms, err := fa.rooms.ListRooms(ctx, []uuid.UUID{id})
	if err != nil || len(rooms) == 0 {
		return ""
	}
	return rooms[0].Name
}

func newInvigilation(examID uuid.UUID, s requiredSlot, facultyID uuid.UUID, name string) Invigilation {
	return Invigilation{
		ID:          uuid.New(),
		ExamID:      examID,
		SubjectID:   s.SubjectID,
		RoomID:      s.Key.RoomID,
		FacultyID:   facultyID,
		FacultyName: name,
		Date:        s.Date,
		Window:      s.Key.Window,
	}
}

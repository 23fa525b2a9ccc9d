package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/memstore"
)

func TestDesignationQuotas(t *testing.T) {
	t.Run("Five slots", func(t *testing.T) {
		q := engine.DesignationQuotas(5)
		assert.Equal(t, engine.Quota{Min: 2, Max: 3}, q[engine.DesignationAssistant])
		assert.Equal(t, engine.Quota{Min: 1, Max: 2}, q[engine.DesignationAssociate])
		assert.Equal(t, engine.Quota{Min: 0, Max: 1}, q[engine.DesignationProfessor])
	})

	t.Run("Exact multiples do not round up", func(t *testing.T) {
		q := engine.DesignationQuotas(20)
		assert.Equal(t, engine.Quota{Min: 8, Max: 10}, q[engine.DesignationAssistant])
		assert.Equal(t, engine.Quota{Min: 4, Max: 7}, q[engine.DesignationAssociate])
		assert.Equal(t, engine.Quota{Min: 0, Max: 3}, q[engine.DesignationProfessor])
	})

	t.Run("Single slot", func(t *testing.T) {
		q := engine.DesignationQuotas(1)
		for _, d := range engine.Designations {
			assert.Equal(t, 1, q[d].Max, d.String())
			assert.Zero(t, q[d].Min, d.String())
		}
	})
}

func TestParseDesignation(t *testing.T) {
	cases := map[string]engine.Designation{
		"Assistant":            engine.DesignationAssistant,
		"assistant professor":  engine.DesignationAssistant,
		"Asst. Prof":           engine.DesignationAssistant,
		"ASSOCIATE  PROFESSOR": engine.DesignationAssociate,
		"Assoc Prof.":          engine.DesignationAssociate,
		"Professor":            engine.DesignationProfessor,
		" prof ":               engine.DesignationProfessor,
		"Full Professor":       engine.DesignationProfessor,
		"Ｐｒｏｆｅｓｓｏｒ":            engine.DesignationProfessor,
	}
	for in, want := range cases {
		got, err := engine.ParseDesignation(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := engine.ParseDesignation("Lecturer")
	assert.Error(t, err)
	assert.Equal(t, engine.DesignationUnknown, got)
}

func TestOrderByFairness(t *testing.T) {
	g := gomega.NewWithT(t)

	group := []engine.Faculty{
		{ID: uuid.New(), Name: "c", PreviousAllocations: 2},
		{ID: uuid.New(), Name: "a", PreviousAllocations: 0},
		{ID: uuid.New(), Name: "d", PreviousAllocations: 2},
		{ID: uuid.New(), Name: "b", PreviousAllocations: 0},
		{ID: uuid.New(), Name: "e", PreviousAllocations: 5},
	}
	names := func(fs []engine.Faculty) []string {
		return lo.Map(fs, func(f engine.Faculty, _ int) string { return f.Name })
	}

	t.Run("Noop keeps input order among ties", func(t *testing.T) {
		got := engine.OrderByFairness(group, engine.NoopTieBreaker{})
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names(got))
		assert.Equal(t, "c", group[0].Name, "input must not be reordered")
	})

	t.Run("Random shuffle stays within tie runs", func(t *testing.T) {
		tb := engine.NewRandomTieBreaker(42)
		for range 50 {
			got := engine.OrderByFairness(group, tb)
			g.Expect(names(got[:2])).To(gomega.ConsistOf("a", "b"))
			g.Expect(names(got[2:4])).To(gomega.ConsistOf("c", "d"))
			g.Expect(got[4].Name).To(gomega.Equal("e"))
		}
	})

	t.Run("Same seed, same order", func(t *testing.T) {
		ties := lo.Times(8, func(i int) engine.Faculty { return engine.Faculty{ID: uuid.New(), Name: string(rune('a' + i))} })
		x := engine.OrderByFairness(ties, engine.NewRandomTieBreaker(7))
		y := engine.OrderByFairness(ties, engine.NewRandomTieBreaker(7))
		assert.Equal(t, names(x), names(y))
		g.Expect(names(x)).To(gomega.ConsistOf(names(ties)))
	})

	t.Run("Nil tie breaker only sorts", func(t *testing.T) {
		got := engine.OrderByFairness(group, nil)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names(got))
	})
}

func TestMinQuotaHook(t *testing.T) {
	ctx := context.Background()

	//** Arrange
	store := memstore.New()
	rooms := seedRooms(store, 30, 30, 30, 30, 30)
	examID, subject := uuid.New(), uuid.New()
	for _, r := range rooms {
		seedSlots(t, store, examID, slotSpec{room: r, subject: subject, date: "2025-04-02", start: "14:00", end: "17:00"})
	}
	pool := lo.Times(5, func(i int) engine.Faculty {
		return addFaculty(store, "asst", engine.DesignationAssistant, i)
	})

	type call struct {
		d     engine.Designation
		min   int
		taken int
	}
	var calls []call
	allocator := newFacultyAllocator(store).WithMinQuotaHook(func(d engine.Designation, q engine.Quota, taken int) {
		calls = append(calls, call{d, q.Min, taken})
	})

	//** Act
	res, err := allocator.Allocate(ctx, examID, facultyIDs(pool...))

	//** Assert
	// only 3 assistants fit the capped pool; fallback picks up the remaining two
	require.NoError(t, err)
	assert.True(t, res.Shortage)
	assert.Len(t, lo.Uniq(lo.Map(res.Created, func(i engine.Invigilation, _ int) uuid.UUID { return i.FacultyID })), 5)
	assert.Equal(t, []call{{engine.DesignationAssociate, 1, 0}}, calls)
}

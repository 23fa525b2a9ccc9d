package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/memstore"
)

func TestAuditJobReportsViolationsInHorizon(t *testing.T) {
	g := NewWithT(t)
	//** Arrange
	ctx := context.Background()
	store := memstore.New()
	room := store.AddRoom(engine.Room{Name: "Lab 2", Capacity: 10})
	settings := configs.DefaultAllocationSettings()
	settings.AuditHorizonDays = 7
	job := NewAuditJob(store, settings)
	loc := settings.Location()
	job.now = func() time.Time { return time.Date(2025, 4, 1, 8, 0, 0, 0, loc) }

	soon := time.Date(2025, 4, 3, 0, 0, 0, 0, loc)
	late := time.Date(2025, 5, 1, 0, 0, 0, 0, loc)
	w1 := engine.Window{Start: "09:00", End: "11:00"}
	w2 := engine.Window{Start: "10:00", End: "12:00"}
	for _, a := range []engine.RoomAllocation{
		{RoomID: room.ID, Occupants: make([]string, 6), Date: soon, Window: w1},
		{RoomID: room.ID, Occupants: make([]string, 6), Date: soon, Window: w2},
		{RoomID: room.ID, Occupants: make([]string, 20), Date: late, Window: w1},
	} {
		require.NoError(t, store.Create(ctx, &a))
	}
	fac := uuid.New()
	require.NoError(t, store.CreateBatch(ctx, []engine.Invigilation{
		{RoomID: room.ID, FacultyID: fac, Date: soon, Window: w1},
		{RoomID: uuid.New(), FacultyID: fac, Date: soon, Window: w2},
	}))

	//** Act
	violations, err := job.Run(ctx)

	//** Assert
	require.NoError(t, err)
	kinds := lo.Map(violations, func(v engine.Violation, _ int) string { return v.Kind })
	g.Expect(kinds).To(ContainElement("capacity"))
	g.Expect(kinds).To(ContainElement("double_booking"))
	for _, v := range violations {
		assert.Equal(t, "2025-04-03", v.Date)
	}
}

func TestAuditJobCleanStore(t *testing.T) {
	store := memstore.New()
	job := NewAuditJob(store, configs.DefaultAllocationSettings())

	violations, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestAuditJobStorageFailure(t *testing.T) {
	store := memstore.New()
	job := NewAuditJob(store, configs.DefaultAllocationSettings())
	store.Fail("ListRoomAllocationsBetween", assert.AnError)

	_, err := job.Run(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
}

func TestStartRejectsBadSpec(t *testing.T) {
	job := NewAuditJob(memstore.New(), configs.DefaultAllocationSettings())

	_, err := Start(job, "every now and then")
	assert.Error(t, err)

	c, err := Start(job, "@every 1h")
	require.NoError(t, err)
	<-c.Stop().Done()
}

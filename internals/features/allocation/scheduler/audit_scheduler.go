// file: internals/features/allocation/scheduler/audit_scheduler.go
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"exam_allocation_backend/internals/configs"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/repository"
)

// AuditJob re-checks seat capacity and invigilator double-booking over the upcoming horizon.
type AuditJob struct {
	store   repository.DashboardStore
	horizon int
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
}

func NewAuditJob(store repository.DashboardStore, settings configs.AllocationSettings) *AuditJob {
	return &AuditJob{
		store:   store,
		horizon: settings.AuditHorizonDays,
		loc:     settings.Location(),
		timeout: 2 * time.Minute,
		now:     time.Now,
	}
}

// Run returns every violation dated today .. today+horizon.
func (j *AuditJob) Run(ctx context.Context) ([]engine.Violation, error) {
	from := engine.NormalizeDate(j.now(), j.loc)
	to := from.AddDate(0, 0, j.horizon)

	rooms, err := j.store.ListAllRooms(ctx)
	if err != nil {
		return nil, err
	}
	allocs, err := j.store.ListRoomAllocationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	invs, err := j.store.ListInvigilationsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := engine.AuditRoomCapacity(rooms, allocs)
	out = append(out, engine.AuditInvigilations(invs)...)
	log.Printf("[AUDIT] %s..%s allocations=%d invigilations=%d violations=%d",
		engine.DateKey(from), engine.DateKey(to), len(allocs), len(invs), len(out))
	return out, nil
}

func (j *AuditJob) runLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	violations, err := j.Run(ctx)
	if err != nil {
		log.Printf("[AUDIT] ❌ gagal: %v", err)
		return
	}
	for _, v := range violations {
		log.Printf("[AUDIT] ⚠️ %s", v)
	}
}

// Start schedules job on spec; an overrunning audit skips the next tick.
func Start(job *AuditJob, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, job.runLogged); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[AUDIT] started schedule=%q horizon=%dd", spec, job.horizon)
	return c, nil
}

// ── ENTRYPOINT: panggil dari main.go setelah DB siap
func StartAllocationAuditCron(db *gorm.DB, settings configs.AllocationSettings) (*cron.Cron, error) {
	stores := repository.NewGormUnitOfWork(db).Stores()
	return Start(NewAuditJob(stores.Dashboard, settings), settings.AuditCron)
}

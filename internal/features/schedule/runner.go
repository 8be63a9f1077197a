package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	common_models "go-broker/internal/common/models"
	"go-broker/internal/config"
	"go-broker/internal/features/audit"
	"go-broker/internal/features/catalog"
	"go-broker/internal/features/delivery"
	"go-broker/internal/features/execution"
	"go-broker/internal/features/recurrence"
	"go-broker/internal/features/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Publisher pushes run events to live listeners of a tenant
type Publisher interface {
	Publish(tenantID string, event any)
}

// Runner sweeps due schedules on a fixed interval and executes them. Dispatch is
// serialised per schedule id only; unrelated schedules run in parallel.
type Runner struct {
	Repo       ScheduleRepository
	Reports    ReportLookup
	Catalog    catalog.Catalog
	Compiler   *report.Compiler
	Engine     execution.Engine
	Delivery   delivery.DeliveryService
	Audit      audit.AuditService
	Publisher  Publisher
	Logger     *zap.Logger
	Interval   time.Duration
	RunTimeout time.Duration

	scheduler *cron.Cron
	locks     sync.Map // schedule id -> *sync.Mutex
	wg        sync.WaitGroup
	base      context.Context
	cancel    context.CancelFunc
	now       func() time.Time
}

func NewRunner(
	repo ScheduleRepository,
	reports ReportLookup,
	cat catalog.Catalog,
	compiler *report.Compiler,
	engine execution.Engine,
	deliverySvc delivery.DeliveryService,
	auditSvc audit.AuditService,
	publisher Publisher,
	cfg *config.Config,
	logger *zap.Logger,
) *Runner {
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		Repo:       repo,
		Reports:    reports,
		Catalog:    cat,
		Compiler:   compiler,
		Engine:     engine,
		Delivery:   deliverySvc,
		Audit:      auditSvc,
		Publisher:  publisher,
		Logger:     logger,
		Interval:   cfg.ScheduleSweepInterval,
		RunTimeout: cfg.ScheduleRunTimeout,
		base:       base,
		cancel:     cancel,
		now:        time.Now,
	}
}

func (r *Runner) clock() time.Time {
	return r.now().UTC()
}

// Start fails runs a previous process left behind, then begins sweeping. An
// interrupted scheduled run still consumes its due time, so the first sweep
// does not retry it.
func (r *Runner) Start(ctx context.Context) error {
	interrupted, err := r.Repo.ListInterrupted(ctx)
	if err != nil {
		return fmt.Errorf("list interrupted runs: %w", err)
	}
	for _, s := range interrupted {
		if s.RunningDueAt == nil {
			continue
		}
		if _, err := r.Repo.AdvanceDue(ctx, s.ID.Hex(), *s.RunningDueAt, r.nextAfter(s, *s.RunningDueAt)); err != nil {
			return fmt.Errorf("advance interrupted schedule %s: %w", s.ID.Hex(), err)
		}
	}

	n, err := r.Repo.ResetInterrupted(ctx, r.clock())
	if err != nil {
		return fmt.Errorf("reset interrupted runs: %w", err)
	}
	if n > 0 {
		r.Logger.Warn("marked interrupted schedule runs as failed", zap.Int64("count", n))
	}

	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	r.scheduler = cron.New()
	if _, err := r.scheduler.AddFunc("@every "+interval.String(), func() {
		r.Sweep(r.base)
	}); err != nil {
		return fmt.Errorf("register sweep: %w", err)
	}
	r.scheduler.Start()
	r.Logger.Info("schedule runner started", zap.Duration("interval", interval))
	return nil
}

// Stop halts the ticker and waits for in-flight runs until ctx expires, then cancels them
func (r *Runner) Stop(ctx context.Context) error {
	if r.scheduler != nil {
		<-r.scheduler.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		r.Logger.Info("schedule runner stopped")
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

// Wait blocks until every dispatched run has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}

// lockFor keeps one entry per schedule id seen by this process. Deleted schedules
// drop theirs via forget; disabled ones keep theirs.
func (r *Runner) lockFor(id string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// forget drops the lock of a deleted schedule. A run still holding it finishes
// undisturbed; its schedule document is gone, so nothing can claim it again.
func (r *Runner) forget(id string) {
	r.locks.Delete(id)
}

// Sweep dispatches every active schedule whose due time has passed and returns
// how many runs it started.
func (r *Runner) Sweep(ctx context.Context) int {
	due, err := r.Repo.ListDue(ctx, r.clock())
	if err != nil {
		r.Logger.Error("failed to list due schedules", zap.Error(err))
		return 0
	}

	started := 0
	for i := range due {
		if r.dispatchDue(ctx, due[i]) {
			started++
		}
	}
	if started > 0 {
		r.Logger.Debug("sweep dispatched runs", zap.Int("started", started), zap.Int("due", len(due)))
	}
	return started
}

func (r *Runner) dispatchDue(ctx context.Context, s ReportSchedule) bool {
	if s.NextDueAt == nil {
		return false
	}
	id := s.ID.Hex()
	due := *s.NextDueAt

	mu := r.lockFor(id)
	if !mu.TryLock() {
		r.Logger.Debug("schedule already running, skipped", zap.String("schedule_id", id))
		return false
	}
	claimed, err := r.Repo.ClaimDue(ctx, id, due)
	if err != nil || !claimed {
		mu.Unlock()
		if err != nil {
			r.Logger.Error("failed to claim schedule", zap.String("schedule_id", id), zap.Error(err))
		} else {
			r.Logger.Debug("schedule claimed elsewhere, skipped", zap.String("schedule_id", id), zap.Time("due_at", due))
		}
		return false
	}

	run := r.begin(ctx, s, TriggerSchedule, &due)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer mu.Unlock()
		r.execute(ctx, s, run)
	}()
	return true
}

// RunNow executes s out of band. It is refused while another run of s is in flight
// and never moves the schedule's next due time.
func (r *Runner) RunNow(ctx context.Context, s *ReportSchedule) (*ScheduleRun, error) {
	id := s.ID.Hex()
	mu := r.lockFor(id)
	if !mu.TryLock() {
		return nil, &ScheduleConflictError{ScheduleID: id}
	}
	claimed, err := r.Repo.ClaimManual(ctx, id)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	if !claimed {
		mu.Unlock()
		return nil, &ScheduleConflictError{ScheduleID: id}
	}

	// the run outlives the request but keeps its identity for auditing
	runCtx := context.WithoutCancel(ctx)
	snapshot := *s
	run := r.begin(runCtx, snapshot, TriggerManual, nil)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer mu.Unlock()
		r.execute(runCtx, snapshot, run)
	}()
	return run, nil
}

func (r *Runner) begin(ctx context.Context, s ReportSchedule, trigger Trigger, due *time.Time) *ScheduleRun {
	run := &ScheduleRun{
		TenantID:   s.TenantID,
		ScheduleID: s.ID.Hex(),
		ReportID:   s.ReportID,
		Trigger:    trigger,
		DueAt:      due,
		StartedAt:  r.clock(),
		Outcome:    OutcomeRunning,
	}
	if err := r.Repo.CreateRun(ctx, run); err != nil {
		r.Logger.Warn("failed to create schedule run log", zap.String("schedule_id", run.ScheduleID), zap.Error(err))
	}
	r.publish(s.TenantID, "run.started", run)
	return run
}

func (r *Runner) execute(ctx context.Context, s ReportSchedule, run *ScheduleRun) {
	id := s.ID.Hex()
	ctx = context.WithValue(ctx, common_models.TenantIDKey, s.TenantID)

	runCtx := ctx
	if r.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.RunTimeout)
		defer cancel()
	}
	result, runErr := r.produce(runCtx, s)

	// bookkeeping must land even when the run itself timed out
	ctx = context.WithoutCancel(ctx)
	finished := r.clock()

	if run.Trigger == TriggerSchedule && run.DueAt != nil {
		next := r.nextAfter(s, *run.DueAt)
		if _, err := r.Repo.AdvanceDue(ctx, id, *run.DueAt, next); err != nil {
			r.Logger.Error("failed to advance schedule", zap.String("schedule_id", id), zap.Error(err))
		}
	}

	completion := Completion{Outcome: OutcomeSuccess, FinishedAt: finished}
	if runErr != nil {
		completion.Outcome = OutcomeFailed
		completion.Error = runErr.Error()
	}
	if err := r.Repo.Complete(ctx, id, completion); err != nil {
		r.Logger.Error("failed to record schedule completion", zap.String("schedule_id", id), zap.Error(err))
	}

	run.FinishedAt = &finished
	run.Outcome = completion.Outcome
	run.Error = completion.Error
	if result != nil {
		run.RowCount = len(result.Rows)
		run.TotalCount = result.TotalCount
	}
	if err := r.Repo.UpdateRun(ctx, run); err != nil {
		r.Logger.Warn("failed to update schedule run log", zap.String("schedule_id", id), zap.Error(err))
	}

	if r.Audit != nil {
		_ = r.Audit.LogChange(ctx, common_models.AuditActionSchedule, "report_schedules", id, map[string]common_models.Change{
			"run": {New: map[string]any{"trigger": run.Trigger, "outcome": run.Outcome, "rows": run.RowCount}},
		})
	}
	r.publish(s.TenantID, "run.finished", run)

	fields := []zap.Field{
		zap.String("schedule_id", id),
		zap.String("report_id", s.ReportID),
		zap.String("trigger", string(run.Trigger)),
		zap.Duration("elapsed", finished.Sub(run.StartedAt)),
	}
	if runErr != nil {
		r.Logger.Error("scheduled report run failed", append(fields, zap.Error(runErr))...)
		return
	}
	r.Logger.Info("scheduled report delivered", append(fields, zap.Int("rows", run.RowCount))...)
}

// produce loads, validates, compiles, executes and delivers the schedule's report
func (r *Runner) produce(ctx context.Context, s ReportSchedule) (*execution.ExecutionResult, error) {
	rep, err := r.Reports.Get(ctx, s.ReportID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if rep.TenantID != s.TenantID {
		return nil, fmt.Errorf("load report: %w: %s", report.ErrNotFound, s.ReportID)
	}
	if err := report.Check(r.Catalog, nil, rep.Definition); err != nil {
		return nil, err
	}
	ds, err := r.Catalog.Get(rep.Definition.ReportType)
	if err != nil {
		return nil, err
	}
	q, err := r.Compiler.Compile(ds, rep.Definition)
	if err != nil {
		return nil, err
	}
	result, err := r.Engine.Execute(ctx, q, s.OutputFormat, 0, 0)
	if err != nil {
		return nil, err
	}
	err = r.Delivery.Deliver(ctx, delivery.Request{
		TenantID:     s.TenantID,
		ScheduleID:   s.ID.Hex(),
		ScheduleName: s.Name,
		ReportName:   rep.Name,
		Recipients:   s.Recipients,
		Format:       s.OutputFormat,
		Result:       result,
	})
	if err != nil {
		return result, fmt.Errorf("deliver: %w", err)
	}
	return result, nil
}

// nextAfter is exactly one cadence step past the due time that just ran
func (r *Runner) nextAfter(s ReportSchedule, due time.Time) *time.Time {
	next, err := recurrence.NextDueAfter(s.Frequency, s.RecurrenceExpression, s.AnchorAt, due)
	if err != nil {
		if !errors.Is(err, recurrence.ErrNeverFires) {
			r.Logger.Error("cannot compute next due time", zap.String("schedule_id", s.ID.Hex()), zap.Error(err))
		}
		return nil
	}
	return &next
}

func (r *Runner) publish(tenantID, kind string, run *ScheduleRun) {
	if r.Publisher == nil {
		return
	}
	r.Publisher.Publish(tenantID, RunEvent{
		Type:       kind,
		ScheduleID: run.ScheduleID,
		ReportID:   run.ReportID,
		RunID:      run.ID.Hex(),
		Trigger:    run.Trigger,
		Outcome:    run.Outcome,
		Error:      run.Error,
		At:         r.clock(),
	})
}

package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	common_models "go-broker/internal/common/models"
	"go-broker/internal/config"
	"go-broker/internal/features/catalog"
	"go-broker/internal/features/delivery"
	"go-broker/internal/features/execution"
	"go-broker/internal/features/report"
	"go-broker/pkg/condition"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// memoryRepo mirrors the claim semantics of the mongo repository
type memoryRepo struct {
	mu         sync.Mutex
	schedules  map[string]*ReportSchedule
	runs       []*ScheduleRun
	running    int
	maxRunning int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{schedules: map[string]*ReportSchedule{}}
}

func (m *memoryRepo) get(id string) ReportSchedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.schedules[id]
}

func (m *memoryRepo) Create(_ context.Context, s *ReportSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	cp := *s
	m.schedules[s.ID.Hex()] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*ReportSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *s
	return &cp, nil
}

func (m *memoryRepo) List(_ context.Context, tenantID, reportID string) ([]ReportSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ReportSchedule{}
	for _, s := range m.schedules {
		if s.TenantID == tenantID && (reportID == "" || s.ReportID == reportID) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepo) UpdateSettings(_ context.Context, s *ReportSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.schedules[s.ID.Hex()]
	if !ok {
		return notFound(s.ID.Hex())
	}
	cur.Name = s.Name
	cur.Frequency = s.Frequency
	cur.RecurrenceExpression = s.RecurrenceExpression
	cur.Recipients = s.Recipients
	cur.OutputFormat = s.OutputFormat
	cur.AnchorAt = s.AnchorAt
	cur.NextDueAt = s.NextDueAt
	cur.Warnings = s.Warnings
	cur.UpdatedAt = s.UpdatedAt
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id string, from, to Status, nextDueAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.schedules[id]
	if !ok {
		return notFound(id)
	}
	if cur.Status != from {
		return invalidTransition(fmt.Errorf("%w: schedule is no longer %s", ErrInvalidTransition, from))
	}
	cur.Status = to
	cur.NextDueAt = nextDueAt
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedules, id)
	return nil
}

func (m *memoryRepo) DisableForReport(_ context.Context, tenantID, reportID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.schedules {
		if s.TenantID == tenantID && s.ReportID == reportID && s.Status != StatusDisabled {
			s.Status = StatusDisabled
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) ListDue(_ context.Context, now time.Time) ([]ReportSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ReportSchedule{}
	for _, s := range m.schedules {
		if s.Status == StatusActive && s.NextDueAt != nil && !s.NextDueAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memoryRepo) claim(s *ReportSchedule) bool {
	if s.LastRunOutcome == OutcomeRunning {
		return false
	}
	s.LastRunOutcome = OutcomeRunning
	m.running++
	if m.running > m.maxRunning {
		m.maxRunning = m.running
	}
	return true
}

func (m *memoryRepo) ClaimDue(_ context.Context, id string, dueAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok || s.Status != StatusActive || s.NextDueAt == nil || !s.NextDueAt.Equal(dueAt) {
		return false, nil
	}
	if !m.claim(s) {
		return false, nil
	}
	due := dueAt
	s.RunningDueAt = &due
	return true, nil
}

func (m *memoryRepo) ClaimManual(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok || s.Status == StatusDisabled {
		return false, nil
	}
	if !m.claim(s) {
		return false, nil
	}
	s.RunningDueAt = nil
	return true, nil
}

func (m *memoryRepo) AdvanceDue(_ context.Context, id string, from time.Time, to *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok || s.NextDueAt == nil || !s.NextDueAt.Equal(from) {
		return false, nil
	}
	s.NextDueAt = to
	return true, nil
}

func (m *memoryRepo) Complete(_ context.Context, id string, c Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil
	}
	if s.LastRunOutcome == OutcomeRunning {
		m.running--
	}
	at := c.FinishedAt
	s.LastRunAt = &at
	s.LastRunOutcome = c.Outcome
	s.LastError = c.Error
	s.RunningDueAt = nil
	return nil
}

func (m *memoryRepo) ListInterrupted(context.Context) ([]ReportSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ReportSchedule{}
	for _, s := range m.schedules {
		if s.LastRunOutcome == OutcomeRunning {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memoryRepo) ResetInterrupted(_ context.Context, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.schedules {
		if s.LastRunOutcome == OutcomeRunning {
			s.LastRunOutcome = OutcomeFailed
			s.LastError = interruptedError
			t := at
			s.LastRunAt = &t
			s.RunningDueAt = nil
			m.running--
			n++
		}
	}
	for _, r := range m.runs {
		if r.Outcome == OutcomeRunning {
			t := at
			r.Outcome = OutcomeFailed
			r.Error = interruptedError
			r.FinishedAt = &t
		}
	}
	return n, nil
}

func (m *memoryRepo) CreateRun(_ context.Context, run *ScheduleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = primitive.NewObjectID()
	cp := *run
	m.runs = append(m.runs, &cp)
	return nil
}

func (m *memoryRepo) UpdateRun(_ context.Context, run *ScheduleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.runs {
		if r.ID == run.ID {
			cp := *run
			m.runs[i] = &cp
		}
	}
	return nil
}

func (m *memoryRepo) ListRuns(_ context.Context, scheduleID string, limit int) ([]ScheduleRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ScheduleRun{}
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].ScheduleID == scheduleID {
			out = append(out, *m.runs[i])
		}
	}
	return out, nil
}

func (m *memoryRepo) EnsureIndexes(context.Context) error { return nil }

func (m *memoryRepo) allRuns() []ScheduleRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScheduleRun, len(m.runs))
	for i, r := range m.runs {
		out[i] = *r
	}
	return out
}

type reportTable map[string]*report.SavedReport

func (t reportTable) Get(_ context.Context, id string) (*report.SavedReport, error) {
	r, ok := t[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return r, nil
}

// gateEngine blocks every Execute until release is closed
type gateEngine struct {
	started chan struct{}
	release chan struct{}
	err     error
	calls   atomic.Int32
}

func newGateEngine() *gateEngine {
	return &gateEngine{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func openEngine() *gateEngine {
	e := newGateEngine()
	close(e.release)
	return e
}

func (e *gateEngine) Execute(ctx context.Context, q *execution.CompiledQuery, format execution.Format, limit, offset int) (*execution.ExecutionResult, error) {
	e.calls.Add(1)
	e.started <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return &execution.ExecutionResult{
		ExecutionID: "run",
		ReportType:  q.ReportType,
		Columns:     q.Columns,
		Rows:        []map[string]any{{"Agent": "A. Agent"}, {"Agent": "B. Agent"}},
		TotalCount:  2,
		Format:      format,
	}, nil
}

func (e *gateEngine) ExecuteWithTimeout(ctx context.Context, q *execution.CompiledQuery, format execution.Format, limit, offset int, _ time.Duration) (*execution.ExecutionResult, error) {
	return e.Execute(ctx, q, format, limit, offset)
}

type captureDelivery struct {
	mu       sync.Mutex
	requests []delivery.Request
}

func (d *captureDelivery) Deliver(_ context.Context, req delivery.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	return nil
}

type nopAudit struct{}

func (nopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(context.Context, string, map[string]interface{}, int64, int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []RunEvent
}

func (p *capturePublisher) Publish(_ string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.(RunEvent))
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type + ":" + string(e.Outcome)
	}
	return out
}

var (
	alice = common_models.Identity{UserID: "alice", TenantID: "t1"}
	bob   = common_models.Identity{UserID: "bob", TenantID: "t1"}
	admin = common_models.Identity{UserID: "root", TenantID: "t1", Roles: []string{common_models.RoleTenantAdmin}}
)

const reportID = "65f000000000000000000001"

func commissionsReport() *report.SavedReport {
	return &report.SavedReport{
		TenantID:  "t1",
		Name:      "Commissions",
		CreatedBy: "alice",
		Definition: report.ReportDefinition{
			ReportType: "commissions",
			Columns: []report.ColumnSelection{
				{ColumnID: "agent_name", Order: 1},
				{ColumnID: "commission_amount", Order: 2},
			},
			Filters: map[string]report.FilterValue{
				"period": {Operator: catalog.OpBetween, Value: []any{"2024-01-01", "2024-03-31"}},
			},
		},
	}
}

type fixture struct {
	clock     *fakeClock
	repo      *memoryRepo
	engine    *gateEngine
	delivered *captureDelivery
	events    *capturePublisher
	runner    *Runner
	svc       *ScheduleServiceImpl
}

func newFixture(engine *gateEngine) *fixture {
	f := &fixture{
		clock:     &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		repo:      newMemoryRepo(),
		engine:    engine,
		delivered: &captureDelivery{},
		events:    &capturePublisher{},
	}
	reports := reportTable{reportID: commissionsReport()}
	cfg := &config.Config{ScheduleSweepInterval: time.Hour, ScheduleRunTimeout: 5 * time.Second}

	f.runner = NewRunner(f.repo, reports, catalog.NewDefaultCatalog(), report.NewCompiler(condition.Postgres),
		engine, f.delivered, nopAudit{}, f.events, cfg, zap.NewNop())
	f.runner.now = f.clock.Now

	f.svc = NewScheduleService(f.repo, reports, f.runner, nopAudit{}, zap.NewNop()).(*ScheduleServiceImpl)
	f.svc.now = f.clock.Now
	return f
}

func dailyRequest() ScheduleRequest {
	return ScheduleRequest{
		ReportID:     reportID,
		Name:         "Daily commissions",
		Frequency:    "daily",
		Recipients:   []string{"ops@broker.test"},
		OutputFormat: execution.FormatCSV,
	}
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

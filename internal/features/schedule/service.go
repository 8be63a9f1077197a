package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	common_models "go-broker/internal/common/models"
	"go-broker/internal/features/audit"
	"go-broker/internal/features/execution"
	"go-broker/internal/features/recurrence"
	"go-broker/internal/features/report"

	"go.uber.org/zap"
)

// ReportLookup loads saved reports without applying caller visibility
type ReportLookup interface {
	Get(ctx context.Context, id string) (*report.SavedReport, error)
}

type ScheduleService interface {
	CreateSchedule(ctx context.Context, identity common_models.Identity, req ScheduleRequest) (*ReportSchedule, error)
	GetSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error)
	ListSchedules(ctx context.Context, identity common_models.Identity, reportID string) ([]ReportSchedule, error)
	UpdateSchedule(ctx context.Context, identity common_models.Identity, id string, req ScheduleRequest) (*ReportSchedule, error)
	ToggleSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error)
	DisableSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error)
	DeleteSchedule(ctx context.Context, identity common_models.Identity, id string) error
	RunNow(ctx context.Context, identity common_models.Identity, id string) (*ScheduleRun, error)
	ListRuns(ctx context.Context, identity common_models.Identity, id string, limit int) ([]ScheduleRun, error)
	DisableForReport(ctx context.Context, tenantID, reportID string) (int64, error)
}

type ScheduleServiceImpl struct {
	Repo         ScheduleRepository
	Reports      ReportLookup
	Runner       *Runner
	AuditService audit.AuditService
	Logger       *zap.Logger

	fsm *StateMachine
	now func() time.Time
}

func NewScheduleService(repo ScheduleRepository, reports ReportLookup, runner *Runner, auditService audit.AuditService, logger *zap.Logger) ScheduleService {
	return &ScheduleServiceImpl{
		Repo:         repo,
		Reports:      reports,
		Runner:       runner,
		AuditService: auditService,
		Logger:       logger,
		fsm:          NewStateMachine(),
		now:          time.Now,
	}
}

// clock is second precision so anchors survive the round trip through mongo
func (s *ScheduleServiceImpl) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func canManage(identity common_models.Identity, sched *ReportSchedule) bool {
	return sched.TenantID == identity.TenantID && (sched.CreatedBy == identity.UserID || identity.IsTenantAdmin())
}

func (s *ScheduleServiceImpl) visibleReport(ctx context.Context, identity common_models.Identity, reportID string) (*report.SavedReport, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, &report.ValidationError{Violations: []report.Violation{{Field: "report_id", Message: "report is required"}}}
	}
	rep, err := s.Reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.TenantID != identity.TenantID {
		return nil, s.reportMissing(reportID)
	}
	if !rep.IsPublic && rep.CreatedBy != identity.UserID && !identity.IsTenantAdmin() {
		return nil, s.reportMissing(reportID)
	}
	return rep, nil
}

func (s *ScheduleServiceImpl) reportMissing(id string) error {
	return &statusError{err: fmt.Errorf("%w: %s", report.ErrNotFound, id), status: 404}
}

// settings is a validated, normalised ScheduleRequest
type settings struct {
	name       string
	frequency  recurrence.Frequency
	expression string
	recipients []string
	format     execution.Format
	warnings   []string
}

func validateRequest(req ScheduleRequest, fallbackName string) (*settings, error) {
	var violations []report.Violation
	add := func(field, format string, args ...any) {
		violations = append(violations, report.Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	out := &settings{
		name:       strings.TrimSpace(req.Name),
		frequency:  recurrence.Frequency(strings.ToLower(strings.TrimSpace(string(req.Frequency)))),
		expression: strings.TrimSpace(req.RecurrenceExpression),
		format:     req.OutputFormat,
	}
	if out.name == "" {
		out.name = fallbackName
	}

	warnings, err := recurrence.Validate(out.frequency, out.expression)
	var syntaxErr *recurrence.RecurrenceSyntaxError
	switch {
	case errors.Is(err, recurrence.ErrUnknownFrequency):
		add("frequency", "unknown frequency %q", req.Frequency)
	case errors.As(err, &syntaxErr):
		add("recurrence_expression", "%s", syntaxErr.Reason)
	case err != nil:
		add("recurrence_expression", "%s", err.Error())
	}
	out.warnings = warnings
	if out.frequency != recurrence.Custom {
		out.expression = ""
	}

	if len(req.Recipients) == 0 {
		add("recipients", "at least one recipient is required")
	}
	seen := make(map[string]bool, len(req.Recipients))
	for i, raw := range req.Recipients {
		addr, err := mail.ParseAddress(strings.TrimSpace(raw))
		if err != nil {
			add(fmt.Sprintf("recipients[%d]", i), "invalid e-mail address %q", raw)
			continue
		}
		email := strings.ToLower(addr.Address)
		if seen[email] {
			continue
		}
		seen[email] = true
		out.recipients = append(out.recipients, email)
	}

	switch out.format {
	case execution.FormatCSV, execution.FormatExcel, execution.FormatPDF:
	case "":
		out.format = execution.FormatCSV
	default:
		add("output_format", "output format must be csv, excel or pdf")
	}

	if len(violations) > 0 {
		return nil, &report.ValidationError{Violations: violations}
	}
	return out, nil
}

// firstDue is the first step after anchor; a custom expression that never fires yields nil
func firstDue(freq recurrence.Frequency, expr string, anchor time.Time) (*time.Time, error) {
	next, err := recurrence.NextDue(freq, expr, anchor)
	if errors.Is(err, recurrence.ErrNeverFires) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *ScheduleServiceImpl) CreateSchedule(ctx context.Context, identity common_models.Identity, req ScheduleRequest) (*ReportSchedule, error) {
	rep, err := s.visibleReport(ctx, identity, req.ReportID)
	if err != nil {
		return nil, err
	}
	cfg, err := validateRequest(req, rep.Name)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	next, err := firstDue(cfg.frequency, cfg.expression, now)
	if err != nil {
		return nil, err
	}

	sched := &ReportSchedule{
		TenantID:             identity.TenantID,
		ReportID:             req.ReportID,
		Name:                 cfg.name,
		Frequency:            cfg.frequency,
		RecurrenceExpression: cfg.expression,
		Recipients:           cfg.recipients,
		OutputFormat:         cfg.format,
		Status:               StatusActive,
		AnchorAt:             now,
		NextDueAt:            next,
		Warnings:             cfg.warnings,
		CreatedBy:            identity.UserID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Repo.Create(ctx, sched); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "report_schedules", sched.ID.Hex(), map[string]common_models.Change{
		"schedule": {New: sched},
	})
	return sched, nil
}

func (s *ScheduleServiceImpl) GetSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error) {
	sched, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(identity, sched) {
		return nil, notFound(id)
	}
	return sched, nil
}

func (s *ScheduleServiceImpl) ListSchedules(ctx context.Context, identity common_models.Identity, reportID string) ([]ReportSchedule, error) {
	all, err := s.Repo.List(ctx, identity.TenantID, reportID)
	if err != nil {
		return nil, err
	}
	if identity.IsTenantAdmin() {
		return all, nil
	}
	own := make([]ReportSchedule, 0, len(all))
	for _, sched := range all {
		if sched.CreatedBy == identity.UserID {
			own = append(own, sched)
		}
	}
	return own, nil
}

// UpdateSchedule re-anchors the cadence at now when frequency or expression change
func (s *ScheduleServiceImpl) UpdateSchedule(ctx context.Context, identity common_models.Identity, id string, req ScheduleRequest) (*ReportSchedule, error) {
	old, err := s.GetSchedule(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if s.fsm.IsTerminal(old.Status) {
		return nil, invalidTransition(fmt.Errorf("%w: disabled schedules cannot be edited", ErrInvalidTransition))
	}
	if req.ReportID != "" && req.ReportID != old.ReportID {
		return nil, &report.ValidationError{Violations: []report.Violation{{Field: "report_id", Message: "a schedule cannot move to another report"}}}
	}
	cfg, err := validateRequest(req, old.Name)
	if err != nil {
		return nil, err
	}

	updated := *old
	updated.Name = cfg.name
	updated.Recipients = cfg.recipients
	updated.OutputFormat = cfg.format
	updated.Warnings = cfg.warnings
	updated.UpdatedAt = s.clock()

	if cfg.frequency != old.Frequency || cfg.expression != old.RecurrenceExpression {
		next, err := firstDue(cfg.frequency, cfg.expression, updated.UpdatedAt)
		if err != nil {
			return nil, err
		}
		updated.Frequency = cfg.frequency
		updated.RecurrenceExpression = cfg.expression
		updated.AnchorAt = updated.UpdatedAt
		updated.NextDueAt = next
	}

	if err := s.Repo.UpdateSettings(ctx, &updated); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "report_schedules", id, map[string]common_models.Change{
		"schedule": {Old: old, New: &updated},
	})
	return &updated, nil
}

func (s *ScheduleServiceImpl) ToggleSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error) {
	sched, err := s.GetSchedule(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	next, err := s.fsm.Toggle(sched.Status)
	if err != nil {
		return nil, invalidTransition(err)
	}
	return s.moveTo(ctx, sched, next)
}

func (s *ScheduleServiceImpl) DisableSchedule(ctx context.Context, identity common_models.Identity, id string) (*ReportSchedule, error) {
	sched, err := s.GetSchedule(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	next, err := s.fsm.Transition(sched.Status, TransitionDisable)
	if err != nil {
		return nil, invalidTransition(err)
	}
	return s.moveTo(ctx, sched, next)
}

// moveTo persists a status change. Resuming skips the due times missed while
// paused: the next run is the first cadence step after now.
func (s *ScheduleServiceImpl) moveTo(ctx context.Context, sched *ReportSchedule, status Status) (*ReportSchedule, error) {
	old := sched.Status
	nextDue := sched.NextDueAt
	if status == StatusActive {
		next, err := recurrence.NextDueAfter(sched.Frequency, sched.RecurrenceExpression, sched.AnchorAt, s.clock())
		switch {
		case errors.Is(err, recurrence.ErrNeverFires):
			nextDue = nil
		case err != nil:
			return nil, err
		default:
			nextDue = &next
		}
	}

	id := sched.ID.Hex()
	if err := s.Repo.SetStatus(ctx, id, old, status, nextDue); err != nil {
		return nil, err
	}
	sched.Status = status
	sched.NextDueAt = nextDue

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionSchedule, "report_schedules", id, map[string]common_models.Change{
		"status": {Old: old, New: status},
	})
	return sched, nil
}

func (s *ScheduleServiceImpl) DeleteSchedule(ctx context.Context, identity common_models.Identity, id string) error {
	old, err := s.GetSchedule(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Runner.forget(id)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "report_schedules", id, map[string]common_models.Change{
		"schedule": {Old: old, New: "DELETED"},
	})
	return nil
}

// RunNow starts an out-of-band run and returns its log entry while it is still running
func (s *ScheduleServiceImpl) RunNow(ctx context.Context, identity common_models.Identity, id string) (*ScheduleRun, error) {
	sched, err := s.GetSchedule(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if s.fsm.IsTerminal(sched.Status) {
		return nil, invalidTransition(fmt.Errorf("%w: disabled schedules cannot run", ErrInvalidTransition))
	}
	return s.Runner.RunNow(ctx, sched)
}

func (s *ScheduleServiceImpl) ListRuns(ctx context.Context, identity common_models.Identity, id string, limit int) ([]ScheduleRun, error) {
	if _, err := s.GetSchedule(ctx, identity, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.Repo.ListRuns(ctx, id, limit)
}

func (s *ScheduleServiceImpl) DisableForReport(ctx context.Context, tenantID, reportID string) (int64, error) {
	n, err := s.Repo.DisableForReport(ctx, tenantID, reportID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSchedule, "report_schedules", reportID, map[string]common_models.Change{
			"status":   {New: StatusDisabled},
			"disabled": {New: n},
		})
	}
	return n, nil
}

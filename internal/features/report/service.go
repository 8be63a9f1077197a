package report

import (
	"context"
	"strings"
	"time"

	common_models "go-broker/internal/common/models"
	"go-broker/internal/features/audit"
	"go-broker/internal/features/catalog"
	"go-broker/internal/features/delivery"
	"go-broker/internal/features/execution"
	"go-broker/pkg/condition"

	"go.uber.org/zap"
)

// ScheduleDisabler turns off every schedule that still points at a report
type ScheduleDisabler interface {
	DisableForReport(ctx context.Context, tenantID, reportID string) (int64, error)
}

type ReportService interface {
	Validate(def ReportDefinition) []Violation
	Compile(def ReportDefinition) (*execution.CompiledQuery, error)
	Execute(ctx context.Context, req ExecuteRequest) (*execution.ExecutionResult, error)

	CreateReport(ctx context.Context, identity common_models.Identity, req SaveReportRequest) (*SavedReport, error)
	GetReport(ctx context.Context, identity common_models.Identity, id string) (*SavedReport, error)
	ListReports(ctx context.Context, identity common_models.Identity) ([]SavedReport, error)
	UpdateReport(ctx context.Context, identity common_models.Identity, id string, req SaveReportRequest) (*SavedReport, error)
	DeleteReport(ctx context.Context, identity common_models.Identity, id string) error
	DuplicateReport(ctx context.Context, identity common_models.Identity, id string) (*SavedReport, error)
	RunReport(ctx context.Context, identity common_models.Identity, id string, limit, offset int) (*execution.ExecutionResult, error)
	ExportReport(ctx context.Context, identity common_models.Identity, id string, format execution.Format) (*delivery.Document, error)
}

type ReportServiceImpl struct {
	ReportRepo   ReportRepository
	Catalog      catalog.Catalog
	Compiler     *Compiler
	Engine       execution.Engine
	AuditService audit.AuditService
	Schedules    ScheduleDisabler
	Logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(
	reportRepo ReportRepository,
	cat catalog.Catalog,
	compiler *Compiler,
	engine execution.Engine,
	auditService audit.AuditService,
	schedules ScheduleDisabler,
	logger *zap.Logger,
) ReportService {
	return &ReportServiceImpl{
		ReportRepo:   reportRepo,
		Catalog:      cat,
		Compiler:     compiler,
		Engine:       engine,
		AuditService: auditService,
		Schedules:    schedules,
		Logger:       logger,
		now:          time.Now,
	}
}

func (s *ReportServiceImpl) timestamp() time.Time {
	// mongo keeps milliseconds
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *ReportServiceImpl) Validate(def ReportDefinition) []Violation {
	violations := Validate(s.Catalog, def)
	if violations == nil {
		violations = []Violation{}
	}
	return violations
}

// Compile validates def first, so a *CompileError here is always a defect
func (s *ReportServiceImpl) Compile(def ReportDefinition) (*execution.CompiledQuery, error) {
	if err := Check(s.Catalog, nil, def); err != nil {
		return nil, err
	}
	ds, err := s.Catalog.Get(def.ReportType)
	if err != nil {
		return nil, err
	}
	return s.Compiler.Compile(ds, def)
}

func (s *ReportServiceImpl) Execute(ctx context.Context, req ExecuteRequest) (*execution.ExecutionResult, error) {
	format, ok := execution.ParseFormat(req.Format)
	if !ok {
		return nil, badRequest("unsupported format %q", req.Format)
	}
	q, err := s.Compile(req.Definition)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(req.TimeoutMs) * time.Millisecond
	return s.Engine.ExecuteWithTimeout(ctx, q, format, req.Limit, req.Offset, timeout)
}

func canRead(identity common_models.Identity, r *SavedReport) bool {
	if r.TenantID != identity.TenantID {
		return false
	}
	return r.IsPublic || r.CreatedBy == identity.UserID || identity.IsTenantAdmin()
}

func canModify(identity common_models.Identity, r *SavedReport) bool {
	return r.TenantID == identity.TenantID && (r.CreatedBy == identity.UserID || identity.IsTenantAdmin())
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, identity common_models.Identity, req SaveReportRequest) (*SavedReport, error) {
	name := strings.TrimSpace(req.Name)
	if err := Check(s.Catalog, &name, req.Definition); err != nil {
		return nil, err
	}

	now := s.timestamp()
	report := &SavedReport{
		TenantID:    identity.TenantID,
		Name:        name,
		Description: req.Description,
		Definition:  req.Definition,
		CreatedBy:   identity.UserID,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ReportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "reports", report.ID.Hex(), map[string]common_models.Change{
		"report": {New: report},
	})
	return report, nil
}

// GetReport answers not found for reports the caller may not see
func (s *ReportServiceImpl) GetReport(ctx context.Context, identity common_models.Identity, id string) (*SavedReport, error) {
	report, err := s.ReportRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(identity, report) {
		return nil, notFound(id)
	}
	return report, nil
}

func (s *ReportServiceImpl) ListReports(ctx context.Context, identity common_models.Identity) ([]SavedReport, error) {
	userID := identity.UserID
	if identity.IsTenantAdmin() {
		userID = ""
	}
	return s.ReportRepo.List(ctx, identity.TenantID, userID)
}

func (s *ReportServiceImpl) UpdateReport(ctx context.Context, identity common_models.Identity, id string, req SaveReportRequest) (*SavedReport, error) {
	old, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if !canModify(identity, old) {
		return nil, forbidden()
	}

	name := strings.TrimSpace(req.Name)
	if err := Check(s.Catalog, &name, req.Definition); err != nil {
		return nil, err
	}

	updated := *old
	updated.Name = name
	updated.Description = req.Description
	updated.Definition = req.Definition
	updated.IsPublic = req.IsPublic
	updated.UpdatedAt = s.timestamp()
	updated.UpdatedBy = identity.UserID

	if err := s.ReportRepo.Replace(ctx, &updated); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "reports", id, map[string]common_models.Change{
		"report": {Old: old, New: &updated},
	})
	return &updated, nil
}

// DeleteReport disables the report's schedules before removing it, so a failure
// never leaves a schedule pointing at a missing report.
func (s *ReportServiceImpl) DeleteReport(ctx context.Context, identity common_models.Identity, id string) error {
	old, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return err
	}
	if !canModify(identity, old) {
		return forbidden()
	}

	if s.Schedules != nil {
		n, err := s.Schedules.DisableForReport(ctx, old.TenantID, id)
		if err != nil {
			return err
		}
		if n > 0 {
			s.Logger.Info("disabled schedules of deleted report", zap.String("report_id", id), zap.Int64("count", n))
		}
	}

	if err := s.ReportRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "reports", id, map[string]common_models.Change{
		"report": {Old: old, New: "DELETED"},
	})
	return nil
}

// DuplicateReport copies a visible report into a private one owned by the caller
func (s *ReportServiceImpl) DuplicateReport(ctx context.Context, identity common_models.Identity, id string) (*SavedReport, error) {
	src, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	dup := &SavedReport{
		TenantID:    identity.TenantID,
		Name:        src.Name + " (copy)",
		Description: src.Description,
		Definition:  cloneDefinition(src.Definition),
		CreatedBy:   identity.UserID,
		IsPublic:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.ReportRepo.Create(ctx, dup); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "reports", dup.ID.Hex(), map[string]common_models.Change{
		"duplicated_from": {New: id},
		"report":          {New: dup},
	})
	return dup, nil
}

func cloneDefinition(def ReportDefinition) ReportDefinition {
	out := ReportDefinition{ReportType: def.ReportType}
	if def.Columns != nil {
		out.Columns = append([]ColumnSelection(nil), def.Columns...)
	}
	if def.Sorting != nil {
		out.Sorting = append([]SortSpec(nil), def.Sorting...)
	}
	if def.Filters != nil {
		out.Filters = make(map[string]FilterValue, len(def.Filters))
		for k, v := range def.Filters {
			// mongo decodes lists as primitive.A
			if list, ok := condition.ToSlice(v.Value); ok {
				v.Value = append([]any(nil), list...)
			}
			out.Filters[k] = v
		}
	}
	return out
}

// RunReport re-validates the stored definition, since the catalog may have changed
// since it was saved.
func (s *ReportServiceImpl) RunReport(ctx context.Context, identity common_models.Identity, id string, limit, offset int) (*execution.ExecutionResult, error) {
	report, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	q, err := s.Compile(report.Definition)
	if err != nil {
		return nil, err
	}
	return s.Engine.ExecuteWithTimeout(ctx, q, execution.FormatTable, limit, offset, 0)
}

func (s *ReportServiceImpl) ExportReport(ctx context.Context, identity common_models.Identity, id string, format execution.Format) (*delivery.Document, error) {
	switch format {
	case execution.FormatCSV, execution.FormatExcel, execution.FormatPDF:
	default:
		return nil, badRequest("unsupported export format %q", format)
	}

	report, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	q, err := s.Compile(report.Definition)
	if err != nil {
		return nil, err
	}
	result, err := s.Engine.ExecuteWithTimeout(ctx, q, format, 0, 0, 0)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReport, "reports", id, map[string]common_models.Change{
		"export": {New: string(format)},
	})
	return delivery.Render(result, format, report.Name)
}

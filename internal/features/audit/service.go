package audit

import (
	"context"
	"time"

	common_models "go-broker/internal/common/models"
	"go-broker/internal/middleware"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, tenantID string, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Logger *zap.Logger
	now    func() time.Time
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Logger: logger,
		now:    time.Now,
	}
}

// LogChange records who changed what. Calls without an identity, such as scheduler
// runs, are attributed to "system".
func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	tenantID := ""
	if id, ok := middleware.IdentityFromContext(ctx); ok {
		actorID = id.UserID
		tenantID = id.TenantID
	} else if t, ok := ctx.Value(common_models.TenantIDKey).(string); ok {
		tenantID = t
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		TenantID:  tenantID,
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: s.now().UTC(),
	}

	if err := s.Repo.Create(ctx, log); err != nil {
		s.Logger.Warn("failed to write audit log",
			zap.String("module", module),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, tenantID string, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, tenantID, filters, limit, offset)
}

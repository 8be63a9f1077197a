package audit

import (
	"context"
	"testing"
	"time"

	common_models "go-broker/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRepo struct {
	logs      []common_models.AuditLog
	listedFor string
	limit     int64
	offset    int64
}

func (r *memoryRepo) Create(_ context.Context, log common_models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func (r *memoryRepo) List(_ context.Context, tenantID string, _ map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	r.listedFor, r.limit, r.offset = tenantID, limit, offset
	return r.logs, nil
}

func TestLogChangeUsesIdentity(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	ctx := context.WithValue(context.Background(), common_models.UserIDKey, "u1")
	ctx = context.WithValue(ctx, common_models.TenantIDKey, "t1")

	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionCreate, "reports", "r1", nil))
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "u1", repo.logs[0].ActorID)
	assert.Equal(t, "t1", repo.logs[0].TenantID)
	assert.WithinDuration(t, time.Now(), repo.logs[0].Timestamp, time.Minute)
}

func TestLogChangeWithoutIdentityIsSystem(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	ctx := context.WithValue(context.Background(), common_models.TenantIDKey, "t9")
	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionSchedule, "report_schedules", "s1", nil))
	assert.Equal(t, "system", repo.logs[0].ActorID)
	assert.Equal(t, "t9", repo.logs[0].TenantID)
}

func TestListLogsPaging(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	_, err := svc.ListLogs(context.Background(), "t1", nil, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.listedFor)
	assert.Equal(t, int64(20), repo.limit)
	assert.Equal(t, int64(40), repo.offset)

	_, err = svc.ListLogs(context.Background(), "t1", nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), repo.limit)
	assert.Equal(t, int64(0), repo.offset)
}

package delivery

import (
	"context"
	"fmt"

	"go-broker/internal/features/execution"

	"go.uber.org/zap"
)

// Request asks for one rendered result to be sent to a recipient list
type Request struct {
	TenantID     string
	ScheduleID   string
	ScheduleName string
	ReportName   string
	Recipients   []string
	Format       execution.Format
	Result       *execution.ExecutionResult
}

type DeliveryService interface {
	Deliver(ctx context.Context, req Request) error
}

type DeliveryServiceImpl struct {
	Mailer Mailer
	Repo   DeliveryRepository
	Logger *zap.Logger
}

func NewDeliveryService(mailer Mailer, repo DeliveryRepository, logger *zap.Logger) DeliveryService {
	return &DeliveryServiceImpl{Mailer: mailer, Repo: repo, Logger: logger}
}

func (s *DeliveryServiceImpl) Deliver(ctx context.Context, req Request) error {
	doc, err := Render(req.Result, req.Format, req.ReportName)
	if err != nil {
		return fmt.Errorf("render %s: %w", req.Format, err)
	}

	subject := fmt.Sprintf("%s: %s (%s)", req.ReportName, req.ScheduleName, req.Result.GeneratedAt.UTC().Format("2006-01-02"))
	body := fmt.Sprintf("Attached is the latest run of %q.\r\n\r\nRows: %d of %d\r\nGenerated: %s\r\n",
		req.ReportName, len(req.Result.Rows), req.Result.TotalCount, req.Result.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))

	rec := &Record{
		TenantID:   req.TenantID,
		ScheduleID: req.ScheduleID,
		To:         req.Recipients,
		Subject:    subject,
		Attachment: doc.Filename,
		Status:     StatusQueued,
	}
	if s.Repo != nil {
		if err := s.Repo.Create(ctx, rec); err != nil {
			s.Logger.Warn("failed to record delivery", zap.Error(err))
		}
	}

	sendErr := s.Mailer.Send(ctx, Message{
		To:             req.Recipients,
		Subject:        subject,
		Body:           body,
		AttachmentName: doc.Filename,
		AttachmentType: doc.ContentType,
		Attachment:     doc.Data,
	})

	status, errMsg := StatusSent, ""
	if sendErr != nil {
		status, errMsg = StatusFailed, sendErr.Error()
	}
	if s.Repo != nil && !rec.ID.IsZero() {
		if err := s.Repo.UpdateStatus(ctx, rec.ID, status, errMsg); err != nil {
			s.Logger.Warn("failed to update delivery status", zap.Error(err))
		}
	}
	return sendErr
}

package delivery

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go-broker/internal/features/catalog"
	"go-broker/internal/features/execution"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func sampleResult() *execution.ExecutionResult {
	return &execution.ExecutionResult{
		ExecutionID: "exec-1",
		Columns: []execution.Column{
			{ID: "policy_number", Label: "Policy #", Type: catalog.ColumnText},
			{ID: "premium", Label: "Premium", Type: catalog.ColumnCurrency},
			{ID: "effective_date", Label: "Effective", Type: catalog.ColumnDate},
			{ID: "is_renewal", Label: "Renewal", Type: catalog.ColumnBoolean},
		},
		Rows: []map[string]any{
			{"Policy #": "POL-1", "Premium": decimal.RequireFromString("1200.5"), "Effective": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "Renewal": true},
			{"Policy #": "POL-2, \"B\"", "Premium": nil, "Effective": nil, "Renewal": false},
		},
		TotalCount:  2,
		GeneratedAt: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestRenderCSV(t *testing.T) {
	doc, err := Render(sampleResult(), execution.FormatCSV, "Book of Business")
	require.NoError(t, err)
	assert.Equal(t, "Book_of_Business_20240301_083000.csv", doc.Filename)
	assert.Equal(t, "text/csv", doc.ContentType)

	records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Policy #", "Premium", "Effective", "Renewal"},
		{"POL-1", "1200.50", "2024-02-01", "Yes"},
		{`POL-2, "B"`, "", "", "No"},
	}, records)
}

func TestRenderExcel(t *testing.T) {
	doc, err := Render(sampleResult(), execution.FormatExcel, "Book")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.Filename, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report"}, f.GetSheetList())
	header, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Policy #", header)
	policy, err := f.GetCellValue("Report", "A2")
	require.NoError(t, err)
	assert.Equal(t, "POL-1", policy)
	date, err := f.GetCellValue("Report", "C2")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", date)
}

func TestRenderPDF(t *testing.T) {
	doc, err := Render(sampleResult(), execution.FormatPDF, "Book")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF-")))
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleResult(), "docx", "Book")
	assert.Error(t, err)
}

func TestBuildMessageCarriesAttachment(t *testing.T) {
	raw := string(buildMessage("reports@broker.test", Message{
		To:             []string{"a@x.test", "b@x.test"},
		Subject:        "Weekly claims",
		Body:           "hello",
		AttachmentName: "claims.csv",
		AttachmentType: "text/csv",
		Attachment:     []byte("a,b\n1,2\n"),
	}))

	assert.Contains(t, raw, "To: a@x.test, b@x.test\r\n")
	assert.Contains(t, raw, "Content-Disposition: attachment; filename=\"claims.csv\"")
	assert.Contains(t, raw, "YSxiCjEsMgo=")
	assert.True(t, strings.HasSuffix(raw, "--"+boundary+"--\r\n"))
}

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	m := &SMTPMailer{host: "mail.test", port: 2525, from: "reports@broker.test",
		send: func(addr string, _ smtp.Auth, from string, to []string, _ []byte) error {
			gotAddr, gotFrom, gotTo = addr, from, to
			return nil
		}}

	require.NoError(t, m.Send(context.Background(), Message{To: []string{"a@x.test"}, Subject: "s"}))
	assert.Equal(t, "mail.test:2525", gotAddr)
	assert.Equal(t, "reports@broker.test", gotFrom)
	assert.Equal(t, []string{"a@x.test"}, gotTo)

	assert.Error(t, m.Send(context.Background(), Message{}))
}

type captureMailer struct {
	msgs []Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

type memoryRepo struct {
	records  []*Record
	statuses map[primitive.ObjectID]Status
}

func (r *memoryRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = primitive.NewObjectID()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status Status, _ string) error {
	if r.statuses == nil {
		r.statuses = map[primitive.ObjectID]Status{}
	}
	r.statuses[id] = status
	return nil
}

func TestDeliverRendersAndRecords(t *testing.T) {
	mailer := &captureMailer{}
	repo := &memoryRepo{}
	svc := NewDeliveryService(mailer, repo, zap.NewNop())

	err := svc.Deliver(context.Background(), Request{
		TenantID:     "t1",
		ScheduleID:   "s1",
		ScheduleName: "Monday digest",
		ReportName:   "Open claims",
		Recipients:   []string{"ops@broker.test"},
		Format:       execution.FormatCSV,
		Result:       sampleResult(),
	})
	require.NoError(t, err)

	require.Len(t, mailer.msgs, 1)
	msg := mailer.msgs[0]
	assert.Equal(t, "Open claims: Monday digest (2024-03-01)", msg.Subject)
	assert.True(t, strings.HasSuffix(msg.AttachmentName, ".csv"))

	require.Len(t, repo.records, 1)
	assert.Equal(t, StatusSent, repo.statuses[repo.records[0].ID])
}

func TestDeliverReportsMailerFailure(t *testing.T) {
	boom := errors.New("relay refused")
	repo := &memoryRepo{}
	svc := NewDeliveryService(&captureMailer{err: boom}, repo, zap.NewNop())

	err := svc.Deliver(context.Background(), Request{
		ReportName: "x", Recipients: []string{"a@b.test"}, Format: execution.FormatPDF, Result: sampleResult(),
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, repo.statuses[repo.records[0].ID])
}

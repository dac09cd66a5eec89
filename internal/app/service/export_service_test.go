package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_CSV(t *testing.T) {
	env := setupServiceTest(t, nil)
	export := NewExportService(env.requests, env.candidateRepo)
	ctx := context.Background()

	req := env.createRequest(t, employerSession())
	orphan := &model.VerificationRequest{ID: "REQ-orphan", CompanyID: DemoCompanyID, CandidateID: "candidate-gone", Status: model.RequestStatusDraft, CreatedAt: req.CreatedAt.AddDate(0, 0, -1), DueAt: req.DueAt}
	require.NoError(t, env.requestRepo.Create(ctx, orphan))

	var buf bytes.Buffer
	require.NoError(t, export.CSV(ctx, &buf, RequestFilter{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Request ID", "Candidate", "University", "Status", "Payment", "Created", "Due"}, records[0])
	assert.Equal(t, []string{req.ID, "Jane Doe", "IIT Bombay", "PAYMENT_PENDING", "NOT_PAID", "01 Mar 2024", "06 Mar 2024"}, records[1])
	assert.Equal(t, "REQ-orphan", records[2][0])
	assert.Equal(t, "-", records[2][1])
	assert.Equal(t, "-", records[2][2])
}

func TestExportService_CSVRespectsFilter(t *testing.T) {
	env := setupServiceTest(t, nil)
	export := NewExportService(env.requests, env.candidateRepo)
	env.createRequest(t, employerSession())

	var buf bytes.Buffer
	require.NoError(t, export.CSV(context.Background(), &buf, RequestFilter{Status: model.RequestStatusVerified}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExportService_XLSX(t *testing.T) {
	env := setupServiceTest(t, nil)
	export := NewExportService(env.requests, env.candidateRepo)
	req := env.createRequest(t, employerSession())

	var buf bytes.Buffer
	require.NoError(t, export.XLSX(context.Background(), &buf, RequestFilter{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Requests")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Request ID", rows[0][0])
	assert.Equal(t, req.ID, rows[1][0])
	assert.Equal(t, "Jane Doe", rows[1][1])
	assert.Equal(t, "06 Mar 2024", rows[1][6])
}

package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/xuri/excelize/v2"
)

const (
	exportDateLayout = "02 Jan 2006"
	exportSheet      = "Requests"
)

var exportHeaders = []string{"Request ID", "Candidate", "University", "Status", "Payment", "Created", "Due"}

type ExportService interface {
	CSV(ctx context.Context, w io.Writer, filter RequestFilter) error
	XLSX(ctx context.Context, w io.Writer, filter RequestFilter) error
}

type exportService struct {
	requestService RequestService
	candidateRepo  repository.CandidateRepository
}

func NewExportService(requestService RequestService, candidateRepo repository.CandidateRepository) ExportService {
	return &exportService{requestService: requestService, candidateRepo: candidateRepo}
}

func (s *exportService) rows(ctx context.Context, filter RequestFilter) ([][]string, error) {
	requests, err := s.requestService.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		name, university := "-", "-"
		if c, ok := byID[r.CandidateID]; ok {
			name = orDash(c.FullName)
			university = orDash(c.UniversityName)
		}
		rows = append(rows, []string{
			r.ID,
			name,
			university,
			string(r.Status),
			string(r.Payment.Status),
			r.CreatedAt.Format(exportDateLayout),
			r.DueAt.Format(exportDateLayout),
		})
	}
	return rows, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (s *exportService) CSV(ctx context.Context, w io.Writer, filter RequestFilter) error {
	rows, err := s.rows(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (s *exportService) XLSX(ctx context.Context, w io.Writer, filter RequestFilter) error {
	rows, err := s.rows(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	all := append([][]string{exportHeaders}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write xlsx row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

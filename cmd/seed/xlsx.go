package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/xuri/excelize/v2"
)

// 헤더 이름 → 후보자 필드. 대소문자와 공백은 무시
var candidateColumns = map[string]string{
	"fullname":           "fullName",
	"name":               "fullName",
	"mobile":             "mobile",
	"phone":              "mobile",
	"email":              "email",
	"degree":             "degreeName",
	"degreename":         "degreeName",
	"university":         "universityName",
	"universityname":     "universityName",
	"graduationyear":     "graduationYear",
	"year":               "graduationYear",
	"rollno":             "enrollmentOrRollNo",
	"enrollmentno":       "enrollmentOrRollNo",
	"enrollmentorrollno": "enrollmentOrRollNo",
	"pcnumber":           "pcNumber",
	"initials":           "initials",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(h)
}

// readCandidatesFromXLSX reads the first sheet. The first row names the columns.
// Validation is left to the candidate service.
func readCandidatesFromXLSX(filePath string) ([]service.CandidateInput, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		if field, ok := candidateColumns[normalizeHeader(header)]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = i
			}
		}
	}
	if _, ok := columns["fullName"]; !ok {
		return nil, fmt.Errorf("missing a full name column in headers %v", rows[0])
	}

	cell := func(row []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var inputs []service.CandidateInput
	skipped := 0
	for _, row := range rows[1:] {
		input := service.CandidateInput{
			FullName:           cell(row, "fullName"),
			Mobile:             cell(row, "mobile"),
			Email:              cell(row, "email"),
			DegreeName:         cell(row, "degreeName"),
			UniversityName:     cell(row, "universityName"),
			EnrollmentOrRollNo: cell(row, "enrollmentOrRollNo"),
			PCNumber:           cell(row, "pcNumber"),
			Initials:           cell(row, "initials"),
		}
		// 빈 행 스킵
		if input.FullName == "" && input.Email == "" {
			skipped++
			continue
		}
		if raw := cell(row, "graduationYear"); raw != "" {
			if year, err := strconv.Atoi(raw); err == nil {
				input.GraduationYear = &year
			}
		}
		inputs = append(inputs, input)
	}

	fmt.Printf("  Rows read: %d, blank rows skipped: %d\n", len(rows)-1, skipped)
	return inputs, nil
}

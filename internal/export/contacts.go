// Package export writes processed contact records to spreadsheets.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/entity"
)

const sheet = "Contacts"

var headers = []string{
	"Source File",
	"Organization",
	"Primary Phone",
	"Other Phone",
	"Email",
	"Industry",
	"City",
	"Country",
	"Website",
	"Status",
	"Error",
}

// Row is one processed card. Err is set when the card failed and Record is empty.
type Row struct {
	SourceFile string
	Record     entity.ContactRecord
	Status     constants.JobStatus // derived from Err when empty
	Err        string
}

func (r Row) status() constants.JobStatus {
	switch {
	case r.Status != "":
		return r.Status
	case r.Err != "":
		return constants.JobStatusFailed
	default:
		return constants.JobStatusOK
	}
}

// ContactsXLSX returns an XLSX workbook (as bytes) with one row per card, in the
// order given. Absent fields are left blank.
func ContactsXLSX(rows []Row, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("xlsx drop default sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	failed := 0
	for i, r := range rows {
		rec := r.Record
		values := []string{
			r.SourceFile,
			entity.Deref(rec.OrganizationName),
			entity.Deref(rec.PrimaryPhoneNumber),
			entity.Deref(rec.OtherPhoneNumber),
			entity.Deref(rec.Email),
			entity.Deref(rec.Industry),
			entity.Deref(rec.City),
			entity.Deref(rec.Country),
			entity.Deref(rec.Website),
			string(r.status()),
			r.Err,
		}
		if r.status() != constants.JobStatusOK {
			failed++
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		// Phone numbers like "0720953165" must stay text, so rows are written as strings.
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 36) // source
	_ = f.SetColWidth(sheet, "B", "B", 28) // organization
	_ = f.SetColWidth(sheet, "C", "D", 18) // phones
	_ = f.SetColWidth(sheet, "E", "E", 28) // email
	_ = f.SetColWidth(sheet, "F", "H", 14)
	_ = f.SetColWidth(sheet, "I", "I", 28) // website
	_ = f.SetColWidth(sheet, "J", "J", 12)
	_ = f.SetColWidth(sheet, "K", "K", 48) // error
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

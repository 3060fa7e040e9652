package sink

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/csv-relational-normalizer/pkg/models"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXSink writes each table to its own sheet of one workbook
type XLSXSink struct {
	Path   string
	Logger *logrus.Logger
}

// NewXLSXSink creates a workbook sink writing to path
func NewXLSXSink(path string, logger *logrus.Logger) *XLSXSink {
	return &XLSXSink{Path: path, Logger: logger}
}

// Kind implements Sink
func (s *XLSXSink) Kind() string { return "Excel file" }

// Target implements Sink
func (s *XLSXSink) Target() string { return s.Path }

// Write implements Sink. Sheets follow the table order of result, headers
// go on the first row and missing cells stay blank.
func (s *XLSXSink) Write(result *models.Result) error {
	names, err := SheetNames(result.Tables)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range result.Tables {
		sheet := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, t); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
		s.Logger.Debugf("Wrote sheet %s with %d rows", sheet, len(t.Rows))
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *models.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = v.Native()
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

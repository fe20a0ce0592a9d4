package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"healthtrack/internal/app/dto"
	"healthtrack/internal/domain/reports"
)

const (
	ContentType = "text/csv"
	FileName    = "health_reports.csv"
)

// Header is the fixed column order of the CSV export.
var Header = []string{
	"ID",
	"Created At",
	"Hemoglobin",
	"Fasting Sugar",
	"BP Systolic",
	"BP Diastolic",
	"Cholesterol",
	"Height (cm)",
	"Weight (kg)",
	"BMI",
}

// WriteCSV writes the header followed by one row per report.
func WriteCSV(w io.Writer, items []*reports.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, r := range items {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("export: write report %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders the export into memory.
func CSV(items []*reports.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func row(r *reports.Report) []string {
	return []string{
		r.ID.String(),
		r.CreatedAt.Format(dto.TimestampLayout),
		formatFloat(r.Hemoglobin),
		formatFloat(r.FastingSugar),
		strconv.Itoa(r.Systolic),
		strconv.Itoa(r.Diastolic),
		formatFloat(r.Cholesterol),
		formatFloat(r.HeightCM),
		formatFloat(r.WeightKG),
		formatFloat(r.BMI),
	}
}

// formatFloat writes the shortest decimal form; whole numbers keep a
// trailing ".0".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

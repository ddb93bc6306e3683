package workbook

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are the textual date forms accepted besides Excel serials.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z",
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// parseDate turns a cell into a timestamp. Unparseable values become nil
// rather than rejecting the row.
func parseDate(v string, date1904 bool) *time.Time {
	if v == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if serial <= 0 {
			return nil
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return nil
		}
		return &t
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// parseNumber accepts 1234.5 as well as the Brazilian 1.234,5.
func parseNumber(v string) *float64 {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return finite(f)
	}
	if strings.Contains(v, ",") {
		normalized := strings.ReplaceAll(strings.ReplaceAll(v, ".", ""), ",", ".")
		if f, err := strconv.ParseFloat(normalized, 64); err == nil {
			return finite(f)
		}
	}
	return nil
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseInt rounds a numeric cell to the nearest integer.
func parseInt(v string) *int {
	f := parseNumber(v)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

// parseID accepts whole numbers within int64 only; "12" and "12.0" are
// both 12.
func parseID(v string) (int64, bool) {
	f := parseNumber(v)
	if f == nil || *f != math.Trunc(*f) || *f < math.MinInt64 || *f >= math.MaxInt64 {
		return 0, false
	}
	return int64(*f), true
}

// Package workbook reads the import spreadsheet into booking, client and
// destination rows.
//
// The spreadsheet must carry one sheet per table, named after the table,
// with the column names on the first row. Column order does not matter and
// unknown columns are ignored.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/diewo77/viajante/internal/models"
	"github.com/xuri/excelize/v2"
)

// RequiredSheets are the sheet names an import needs, in report order.
var RequiredSheets = []string{models.TableBookings, models.TableClients, models.TableDestinations}

// ErrUnreadable wraps any failure to open the payload as a spreadsheet.
var ErrUnreadable = errors.New("unreadable spreadsheet")

// MissingSheetsError names the required sheets absent from a workbook.
type MissingSheetsError struct {
	Missing []string
}

func (e *MissingSheetsError) Error() string {
	return "missing required sheets: " + strings.Join(e.Missing, ", ")
}

// Workbook is the parsed content of an import spreadsheet.
type Workbook struct {
	Bookings     []models.Booking
	Clients      []models.Client
	Destinations []models.Destination
	// Skipped counts rows dropped because their key was blank or repeated.
	Skipped int
}

// Parse reads an .xlsx payload. It fails with ErrUnreadable when the payload
// is not a spreadsheet and with *MissingSheetsError when a required sheet
// is absent.
func Parse(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	var missing []string
	for _, name := range RequiredSheets {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingSheetsError{Missing: missing}
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	sheets := make(map[string]*sheet, len(RequiredSheets))
	for _, name := range RequiredSheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", ErrUnreadable, name, err)
		}
		sheets[name] = newSheet(rows)
	}

	wb := &Workbook{}
	wb.Bookings, wb.Skipped = readBookings(sheets[models.TableBookings], date1904)
	var skipped int
	wb.Clients, skipped = readClients(sheets[models.TableClients])
	wb.Skipped += skipped
	wb.Destinations, skipped = readDestinations(sheets[models.TableDestinations])
	wb.Skipped += skipped
	return wb, nil
}

// sheet is a header-indexed view over raw rows.
type sheet struct {
	cols map[string]int
	rows [][]string
}

func newSheet(rows [][]string) *sheet {
	s := &sheet{cols: make(map[string]int)}
	if len(rows) == 0 {
		return s
	}
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := s.cols[key]; key != "" && !dup {
			s.cols[key] = i
		}
	}
	for _, row := range rows[1:] {
		if !blank(row) {
			s.rows = append(s.rows, row)
		}
	}
	return s
}

// cell returns the trimmed value of column name in row, or "".
func (s *sheet) cell(row []string, name string) string {
	i, ok := s.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func readBookings(s *sheet, date1904 bool) ([]models.Booking, int) {
	out := make([]models.Booking, 0, len(s.rows))
	seen := make(map[int64]bool, len(s.rows))
	var pending []int
	var maxID int64
	skipped := 0

	for _, row := range s.rows {
		b := models.Booking{
			BookedAt:    parseDate(s.cell(row, "dt_reserva"), date1904),
			DepartureAt: parseDate(s.cell(row, "dt_embarque"), date1904),
			Client:      s.cell(row, "cliente"),
			Destination: s.cell(row, "destino"),
			Revenue:     parseNumber(s.cell(row, "receita")),
			Cost:        parseNumber(s.cell(row, "custo")),
			Channel:     s.cell(row, "canal_venda"),
			Salesperson: s.cell(row, "vendedor"),
			TripType:    s.cell(row, "tipo_viagem"),
		}
		id, ok := parseID(s.cell(row, "id_reserva"))
		if !ok {
			pending = append(pending, len(out))
			out = append(out, b)
			continue
		}
		if seen[id] {
			skipped++
			continue
		}
		seen[id] = true
		maxID = max(maxID, id)
		b.ID = id
		out = append(out, b)
	}

	// Rows without an id get fresh ones after the largest id in the sheet.
	for _, i := range pending {
		maxID++
		out[i].ID = maxID
	}
	return out, skipped
}

func readClients(s *sheet) ([]models.Client, int) {
	out := make([]models.Client, 0, len(s.rows))
	seen := make(map[string]bool, len(s.rows))
	skipped := 0
	for _, row := range s.rows {
		name := s.cell(row, "cliente")
		if name == "" || seen[name] {
			skipped++
			continue
		}
		seen[name] = true
		out = append(out, models.Client{
			Name:             name,
			Type:             s.cell(row, "tipo_cliente"),
			Region:           s.cell(row, "uf"),
			PartnershipYears: parseInt(s.cell(row, "tempo_parceria_anos")),
		})
	}
	return out, skipped
}

func readDestinations(s *sheet) ([]models.Destination, int) {
	out := make([]models.Destination, 0, len(s.rows))
	seen := make(map[string]bool, len(s.rows))
	skipped := 0
	for _, row := range s.rows {
		name := s.cell(row, "destino")
		if name == "" || seen[name] {
			skipped++
			continue
		}
		seen[name] = true
		out = append(out, models.Destination{
			Name:         name,
			Continent:    s.cell(row, "continente"),
			Country:      s.cell(row, "pais"),
			ExchangeRate: parseNumber(s.cell(row, "cambio_medio_2024")),
		})
	}
	return out, skipped
}

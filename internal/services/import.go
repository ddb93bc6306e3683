package services

import (
	"context"
	"fmt"

	"github.com/diewo77/viajante/internal/logging"
	"github.com/diewo77/viajante/internal/metrics"
	"github.com/diewo77/viajante/internal/models"
	"github.com/diewo77/viajante/internal/workbook"
	"gorm.io/gorm"
)

// ImportBatchSize is the number of rows per INSERT during an import.
const ImportBatchSize = 500

// ImportResult counts the rows written per table and the sheet rows left out.
type ImportResult struct {
	Bookings     int
	Clients      int
	Destinations int
	Skipped      int
}

type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// Replace drops and recreates the three tables and loads the workbook into
// them. Everything runs in one transaction: either all three tables hold
// the new data or none changes.
func (s *ImportService) Replace(ctx context.Context, wb *workbook.Workbook) (*ImportResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceTable(tx, &models.Booking{}, wb.Bookings); err != nil {
			return err
		}
		if err := replaceTable(tx, &models.Client{}, wb.Clients); err != nil {
			return err
		}
		return replaceTable(tx, &models.Destination{}, wb.Destinations)
	})
	if err != nil {
		return nil, err
	}

	res := &ImportResult{
		Bookings:     len(wb.Bookings),
		Clients:      len(wb.Clients),
		Destinations: len(wb.Destinations),
		Skipped:      wb.Skipped,
	}
	metrics.ImportedRows.WithLabelValues(models.TableBookings).Add(float64(res.Bookings))
	metrics.ImportedRows.WithLabelValues(models.TableClients).Add(float64(res.Clients))
	metrics.ImportedRows.WithLabelValues(models.TableDestinations).Add(float64(res.Destinations))
	logging.Ctx(ctx).Info().
		Int("reservas", res.Bookings).
		Int("clientes", res.Clients).
		Int("destinos", res.Destinations).
		Int("skipped", res.Skipped).
		Msg("import completed")
	return res, nil
}

func replaceTable[T any](tx *gorm.DB, model *T, rows []T) error {
	m := tx.Migrator()
	if err := m.DropTable(model); err != nil {
		return fmt.Errorf("drop %T: %w", model, err)
	}
	if err := m.CreateTable(model); err != nil {
		return fmt.Errorf("create %T: %w", model, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, ImportBatchSize).Error; err != nil {
		return fmt.Errorf("insert %T: %w", model, err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/viajante/internal/db"
	"github.com/diewo77/viajante/internal/models"
	"github.com/diewo77/viajante/validation"
	"gorm.io/gorm"
)

// ErrInvalidFilter is returned for listing filters that cannot be applied.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterError carries the per-field violations of a rejected filter.
type FilterError struct {
	Violations validation.Violations
}

func (e *FilterError) Error() string { return ErrInvalidFilter.Error() + ": " + e.Violations.Error() }

func (e *FilterError) Unwrap() error { return ErrInvalidFilter }

// BookingFilter holds the optional listing filters. Empty fields are not
// applied.
type BookingFilter struct {
	Month       string `query:"mes" validate:"omitempty,datetime=2006-01"` // YYYY-MM
	Client      string `query:"cliente"`
	Destination string `query:"destino"`
	Channel     string `query:"canal"`
	Region      string `query:"uf"`
}

// Predicate is one WHERE condition with its bound arguments.
type Predicate struct {
	SQL  string
	Args []any
}

// Predicates turns the filter into conditions over reservas joined with
// clientes. A malformed month yields ErrInvalidFilter.
func (f BookingFilter) Predicates(d db.Dialect) ([]Predicate, error) {
	if v := validation.Struct(f); !v.Empty() {
		return nil, &FilterError{Violations: v}
	}

	var preds []Predicate
	if f.Month != "" {
		year, _ := strconv.Atoi(f.Month[:4])
		month, _ := strconv.Atoi(f.Month[5:7])
		preds = append(preds,
			Predicate{SQL: d.Year("reservas.dt_reserva") + " = ?", Args: []any{year}},
			Predicate{SQL: d.Month("reservas.dt_reserva") + " = ?", Args: []any{month}},
		)
	}
	if f.Client != "" {
		preds = append(preds, Predicate{SQL: "reservas.cliente = ?", Args: []any{f.Client}})
	}
	if f.Destination != "" {
		preds = append(preds, Predicate{SQL: "reservas.destino = ?", Args: []any{f.Destination}})
	}
	if c := strings.TrimSpace(f.Channel); c != "" {
		if models.IsOnlineChannel(c) {
			preds = append(preds, Predicate{SQL: "LOWER(reservas.canal_venda) IN ?", Args: []any{models.OnlineChannelVariants}})
		} else {
			preds = append(preds, Predicate{SQL: "reservas.canal_venda = ?", Args: []any{f.Channel}})
		}
	}
	if f.Region != "" {
		preds = append(preds, Predicate{SQL: "clientes.uf = ?", Args: []any{f.Region}})
	}
	return preds, nil
}

type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// List returns the bookings matching f joined with their client, ordered by
// booking id. Bookings whose client is unknown are not listed.
func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]models.BookingListing, error) {
	preds, err := f.Predicates(db.DialectOf(s.db))
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Table(models.TableBookings).
		Select("reservas.*, clientes.tipo_cliente, clientes.uf, clientes.tempo_parceria_anos").
		Joins("JOIN clientes ON clientes.cliente = reservas.cliente")
	for _, p := range preds {
		q = q.Where(p.SQL, p.Args...)
	}
	out := []models.BookingListing{}
	if err := q.Order("reservas.id_reserva").Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

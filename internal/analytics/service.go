package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/viajante/internal/db"
	"github.com/diewo77/viajante/internal/metrics"
	"github.com/diewo77/viajante/internal/models"
	"gorm.io/gorm"
)

// Service runs the analytical queries against one connection pool.
type Service struct {
	db      *gorm.DB
	queries *QuerySet
}

// NewService renders the queries for the connection's dialect.
func NewService(conn *gorm.DB) *Service {
	return &Service{db: conn, queries: MustQuerySet(db.DialectOf(conn))}
}

// Queries returns the rendered query set.
func (s *Service) Queries() *QuerySet { return s.queries }

func (s *Service) MonthlyRollup(ctx context.Context) ([]models.MonthlyRollup, error) {
	return run[models.MonthlyRollup](ctx, s, MonthlyRollup)
}

func (s *Service) TopMarginDestinations(ctx context.Context) ([]models.DestinationMargin, error) {
	return run[models.DestinationMargin](ctx, s, TopMarginDestinations)
}

func (s *Service) RevenueByChannel(ctx context.Context) ([]models.ChannelRevenue, error) {
	return run[models.ChannelRevenue](ctx, s, RevenueByChannel)
}

func (s *Service) SemesterGrowth(ctx context.Context) ([]models.ClientGrowth, error) {
	return run[models.ClientGrowth](ctx, s, SemesterGrowth)
}

func (s *Service) LoyaltyScores(ctx context.Context) ([]models.LoyaltyScore, error) {
	return run[models.LoyaltyScore](ctx, s, LoyaltyScore)
}

func (s *Service) DestinationProfitability(ctx context.Context) ([]models.DestinationProfitability, error) {
	return run[models.DestinationProfitability](ctx, s, DestinationProfitability)
}

// run executes a named query and scans it into T. An empty result is an
// empty, non-nil slice so it encodes as [].
func run[T any](ctx context.Context, s *Service, name string) (out []T, err error) {
	q, ok := s.queries.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown query %q", name)
	}
	start := time.Now()
	defer func() { metrics.ObserveQuery(name, start, err) }()

	out = []T{}
	if err := s.db.WithContext(ctx).Raw(q.SQL).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Table is an untyped query result.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Tabulate runs arbitrary read-only SQL and returns its columns and raw
// values. DECIMAL/NUMERIC values the driver hands back as text are
// converted to float64 so callers can format them as numbers.
func (s *Service) Tabulate(ctx context.Context, sql string) (*Table, error) {
	rows, err := s.db.WithContext(ctx).Raw(sql).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	numeric := make([]bool, len(cols))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			switch strings.ToUpper(ct.DatabaseTypeName()) {
			case "NUMERIC", "DECIMAL":
				numeric[i] = true
			}
		}
	}

	t := &Table{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalizeValue(v, numeric[i])
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func normalizeValue(v any, numeric bool) any {
	var text string
	switch x := v.(type) {
	case []byte:
		text = string(x)
	case string:
		text = x
	default:
		return v
	}
	if numeric {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

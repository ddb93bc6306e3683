package analytics

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/viajante/internal/db"
	"github.com/diewo77/viajante/internal/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

var nextID int64

func booking(client, dest string, at *time.Time, revenue, cost float64, channel string) models.Booking {
	nextID++
	return models.Booking{
		ID:          nextID,
		BookedAt:    at,
		Client:      client,
		Destination: dest,
		Revenue:     ptr(revenue),
		Cost:        ptr(cost),
		Channel:     channel,
	}
}

func seed(t *testing.T, conn *gorm.DB, records ...any) {
	t.Helper()
	for _, r := range records {
		if err := conn.Create(r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestEmptyTablesReturnEmptySlices(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	rollup, err := svc.MonthlyRollup(ctx)
	if err != nil || rollup == nil || len(rollup) != 0 {
		t.Fatalf("monthly rollup = %v, %v", rollup, err)
	}
	top, err := svc.TopMarginDestinations(ctx)
	if err != nil || top == nil || len(top) != 0 {
		t.Fatalf("top margin = %v, %v", top, err)
	}
	channels, err := svc.RevenueByChannel(ctx)
	if err != nil || channels == nil || len(channels) != 0 {
		t.Fatalf("revenue by channel = %v, %v", channels, err)
	}
	growth, err := svc.SemesterGrowth(ctx)
	if err != nil || growth == nil || len(growth) != 0 {
		t.Fatalf("growth = %v, %v", growth, err)
	}
	loyalty, err := svc.LoyaltyScores(ctx)
	if err != nil || loyalty == nil || len(loyalty) != 0 {
		t.Fatalf("loyalty = %v, %v", loyalty, err)
	}
	profit, err := svc.DestinationProfitability(ctx)
	if err != nil || profit == nil || len(profit) != 0 {
		t.Fatalf("profitability = %v, %v", profit, err)
	}
}

func TestMonthlyRollup(t *testing.T) {
	conn := setupTestDB(t)
	noCost := booking("B", "Y", day(2024, 3, 2), 50, 0, "Loja")
	noCost.Cost = nil
	seed(t, conn,
		ptr(booking("A", "X", day(2024, 1, 15), 100, 40, "Online")),
		ptr(booking("B", "X", day(2024, 3, 1), 200, 150, "Loja")),
		&noCost,
		ptr(booking("A", "Y", day(2023, 12, 31), 10, 20, "Online")),
		ptr(booking("C", "Y", nil, 999, 1, "Online")),
	)

	rows, err := NewService(conn).MonthlyRollup(context.Background())
	if err != nil {
		t.Fatalf("monthly rollup: %v", err)
	}
	want := []string{"2023-12", "2024-01", "2024-03"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d months got %+v", len(want), rows)
	}
	for i, r := range rows {
		if r.Month != want[i] {
			t.Fatalf("row %d month = %s, want %s", i, r.Month, want[i])
		}
		if !near(r.TotalMargin, r.TotalRevenue-r.TotalCost) {
			t.Fatalf("margin mismatch in %+v", r)
		}
	}
	jan := rows[1]
	if jan.TotalBookings != 1 || !near(jan.TotalRevenue, 100) || !near(jan.TotalCost, 40) || !near(jan.TotalMargin, 60) {
		t.Fatalf("unexpected january row %+v", jan)
	}
	mar := rows[2]
	if mar.TotalBookings != 2 || !near(mar.TotalCost, 150) || !near(mar.TotalMargin, 100) {
		t.Fatalf("null cost not counted as zero: %+v", mar)
	}
}

func TestTopMarginDestinations(t *testing.T) {
	conn := setupTestDB(t)
	at := day(2024, 5, 1)
	// Seven destinations with ten bookings each and one with nine.
	dests := map[string]float64{"D1": 10, "D2": 70, "D3": 30, "D4": 50, "D5": 20, "D6": 60, "D7": 40, "FEW": 1000}
	for name, margin := range dests {
		n := 10
		if name == "FEW" {
			n = 9
		}
		for i := 0; i < n; i++ {
			seed(t, conn, ptr(booking("A", name, at, 100+margin, 100, "Online")))
		}
	}

	rows, err := NewService(conn).TopMarginDestinations(context.Background())
	if err != nil {
		t.Fatalf("top margin: %v", err)
	}
	if len(rows) != TopMarginLimit {
		t.Fatalf("expected %d rows got %d", TopMarginLimit, len(rows))
	}
	want := []string{"D2", "D6", "D4", "D7", "D3"}
	for i, r := range rows {
		if r.Destination != want[i] {
			t.Fatalf("row %d = %s, want %s", i, r.Destination, want[i])
		}
		if r.TotalBookings < MinTopMarginBookings {
			t.Fatalf("destination %s has only %d bookings", r.Destination, r.TotalBookings)
		}
		if i > 0 && r.AverageMargin > rows[i-1].AverageMargin {
			t.Fatalf("rows not ordered by margin: %+v", rows)
		}
	}
}

func TestRevenueByChannel(t *testing.T) {
	conn := setupTestDB(t)
	at := day(2024, 2, 1)
	seed(t, conn,
		&models.Client{Name: "A", Type: "Corporativo"},
		&models.Client{Name: "B", Type: "Individual"},
		ptr(booking("A", "X", at, 100, 0, "online")),
		ptr(booking("A", "X", at, 100, 0, "On-Line")),
		ptr(booking("A", "X", at, 100, 0, "Loja")),
		ptr(booking("B", "X", at, 400, 0, "ONLINE")),
		ptr(booking("B", "X", at, 300, 0, "Agência")),
		// Unknown client is dropped by the join.
		ptr(booking("Z", "X", at, 5000, 0, "Online")),
	)

	rows, err := NewService(conn).RevenueByChannel(context.Background())
	if err != nil {
		t.Fatalf("revenue by channel: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 groups got %+v", rows)
	}
	var share float64
	for _, r := range rows {
		share += r.SharePercent
		if models.IsOnlineChannel(r.Channel) && r.Channel != models.OnlineChannel {
			t.Fatalf("channel not normalized: %q", r.Channel)
		}
	}
	if !near(share, 100) {
		t.Fatalf("shares sum to %f", share)
	}
	first := rows[0]
	if first.ClientType != "Corporativo" || first.Channel != "Online" || !near(first.TotalRevenue, 200) || !near(first.SharePercent, 20) {
		t.Fatalf("unexpected first row %+v", first)
	}
}

func TestSemesterGrowth(t *testing.T) {
	conn := setupTestDB(t)
	seed(t, conn,
		// 50% growth.
		ptr(booking("UP", "X", day(2024, 2, 1), 100, 0, "Online")),
		ptr(booking("UP", "X", day(2024, 8, 1), 150, 0, "Online")),
		// Exactly 20% is not enough.
		ptr(booking("EDGE", "X", day(2024, 3, 1), 100, 0, "Online")),
		ptr(booking("EDGE", "X", day(2024, 9, 1), 120, 0, "Online")),
		// No H1 revenue.
		ptr(booking("NEW", "X", day(2024, 10, 1), 500, 0, "Online")),
		// Other years are ignored.
		ptr(booking("OLD", "X", day(2023, 2, 1), 100, 0, "Online")),
		ptr(booking("OLD", "X", day(2024, 7, 1), 900, 0, "Online")),
		// 100% growth.
		ptr(booking("BIG", "X", day(2024, 6, 30), 100, 0, "Online")),
		ptr(booking("BIG", "X", day(2024, 12, 1), 200, 0, "Online")),
	)

	rows, err := NewService(conn).SemesterGrowth(context.Background())
	if err != nil {
		t.Fatalf("growth: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 clients got %+v", rows)
	}
	if rows[0].Client != "BIG" || !near(rows[0].GrowthPercent, 100) {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Client != "UP" || !near(rows[1].GrowthPercent, 50) || !near(rows[1].RevenueH1, 100) || !near(rows[1].RevenueH2, 150) {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
	for _, r := range rows {
		if r.RevenueH1 <= 0 || r.GrowthPercent <= GrowthThreshold*100 {
			t.Fatalf("row violates growth filter %+v", r)
		}
	}
}

func TestLoyaltyScores(t *testing.T) {
	conn := setupTestDB(t)
	at := day(2024, 4, 1)
	seed(t, conn,
		&models.Client{Name: "TOP", Type: "Corporativo", Region: "SP", PartnershipYears: ptr(10)},
		&models.Client{Name: "MID", Type: "Individual", Region: "RJ", PartnershipYears: ptr(5)},
		&models.Client{Name: "LOW", Type: "Individual", Region: "MG", PartnershipYears: ptr(0)},
		// No bookings and no partnership data.
		&models.Client{Name: "NONE", Type: "Individual", Region: "BA"},
	)
	for i := 0; i < 10; i++ {
		seed(t, conn, ptr(booking("TOP", "X", at, 1000, 0, "Online")))
	}
	seed(t, conn,
		ptr(booking("MID", "X", at, 500, 0, "Online")),
		ptr(booking("MID", "X", at, 500, 0, "Online")),
	)

	rows, err := NewService(conn).LoyaltyScores(context.Background())
	if err != nil {
		t.Fatalf("loyalty: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 clients got %+v", rows)
	}
	byName := map[string]models.LoyaltyScore{}
	for i, r := range rows {
		if r.Score < -1e-9 || r.Score > 100+1e-9 {
			t.Fatalf("score out of range %+v", r)
		}
		if i > 0 && r.Score > rows[i-1].Score {
			t.Fatalf("rows not ordered by score: %+v", rows)
		}
		byName[r.Client] = r
	}
	if !near(byName["TOP"].Score, 100) {
		t.Fatalf("client at every maximum scored %f", byName["TOP"].Score)
	}
	if !near(byName["NONE"].Score, 0) {
		t.Fatalf("client at every minimum scored %f", byName["NONE"].Score)
	}
	if byName["TOP"].Region != "SP" || byName["TOP"].ClientType != "Corporativo" {
		t.Fatalf("client attributes missing: %+v", byName["TOP"])
	}
}

func TestLoyaltyScoresSinglePopulationValue(t *testing.T) {
	conn := setupTestDB(t)
	seed(t, conn,
		&models.Client{Name: "A", PartnershipYears: ptr(3)},
		&models.Client{Name: "B", PartnershipYears: ptr(3)},
	)
	rows, err := NewService(conn).LoyaltyScores(context.Background())
	if err != nil {
		t.Fatalf("loyalty: %v", err)
	}
	for _, r := range rows {
		if r.Score != 0 {
			t.Fatalf("expected 0 when min equals max, got %+v", r)
		}
	}
}

func TestDestinationProfitability(t *testing.T) {
	conn := setupTestDB(t)
	at := day(2024, 4, 1)
	seed(t, conn,
		&models.Destination{Name: "Paris", Country: "França", Continent: "Europa"},
		&models.Destination{Name: "Lima", Country: "Peru", Continent: "América do Sul"},
		&models.Destination{Name: "Vazio", Country: "Nenhum", Continent: "Nenhum"},
		ptr(booking("A", "Paris", at, 300, 100, "Online")),
		ptr(booking("A", "Paris", at, 100, 100, "Online")),
		ptr(booking("A", "Lima", at, 500, 100, "Online")),
		ptr(booking("A", "Roma", at, 900, 0, "Online")),
	)

	rows, err := NewService(conn).DestinationProfitability(context.Background())
	if err != nil {
		t.Fatalf("profitability: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 destinations got %+v", rows)
	}
	if rows[0].Destination != "Lima" || !near(rows[0].AverageMargin, 400) || rows[0].Country != "Peru" {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Destination != "Paris" || !near(rows[1].AverageMargin, 100) || rows[1].Continent != "Europa" {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestTabulate(t *testing.T) {
	conn := setupTestDB(t)
	seed(t, conn, ptr(booking("A", "X", day(2024, 1, 15), 100, 40, "Online")))
	svc := NewService(conn)
	q, _ := svc.Queries().Get(MonthlyRollup)

	table, err := svc.Tabulate(context.Background(), q.SQL)
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	wantCols := []string{"mes", "total_reservas", "receita_total", "custo_total", "margem_total"}
	if strings.Join(table.Columns, ",") != strings.Join(wantCols, ",") {
		t.Fatalf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "2024-01" {
		t.Fatalf("rows = %v", table.Rows)
	}

	if _, err := svc.Tabulate(context.Background(), "SELECT * FROM missing_table"); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestQuerySetRendersPerDialect(t *testing.T) {
	pg := MustQuerySet(db.Postgres)
	lite := MustQuerySet(db.SQLite)

	if len(pg.All()) != 6 {
		t.Fatalf("expected 6 queries got %d", len(pg.All()))
	}
	var labels []string
	for _, q := range pg.Report() {
		labels = append(labels, q.Label)
	}
	if strings.Join(labels, "") != "abcde" {
		t.Fatalf("report labels = %v", labels)
	}

	rollupPG, _ := pg.Get(MonthlyRollup)
	if !strings.Contains(rollupPG.SQL, "TO_CHAR(dt_reserva, 'YYYY-MM')") {
		t.Fatalf("postgres rollup: %s", rollupPG.SQL)
	}
	rollupLite, _ := lite.Get(MonthlyRollup)
	if !strings.Contains(rollupLite.SQL, "strftime('%Y-%m', dt_reserva)") {
		t.Fatalf("sqlite rollup: %s", rollupLite.SQL)
	}
	channel, _ := pg.Get(RevenueByChannel)
	if !strings.Contains(channel.SQL, "IN ('online', 'on-line') THEN 'Online'") {
		t.Fatalf("channel normalization missing: %s", channel.SQL)
	}
	top, _ := pg.Get(TopMarginDestinations)
	if !strings.Contains(top.SQL, "COUNT(id_reserva) >= 10") || !strings.Contains(top.SQL, "LIMIT 5") {
		t.Fatalf("top margin constants missing: %s", top.SQL)
	}
	for _, q := range pg.All() {
		if strings.Contains(q.SQL, "{{") {
			t.Fatalf("unrendered template in %s", q.Name)
		}
	}
	if _, ok := pg.Get("nope"); ok {
		t.Fatalf("unknown query found")
	}
}

// Package analytics holds the fixed analytical queries and runs them.
//
// The SQL is written once and rendered per dialect; only date formatting,
// date part extraction and the base-10 logarithm differ between PostgreSQL
// and SQLite.
package analytics

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/diewo77/viajante/internal/db"
	"github.com/diewo77/viajante/internal/models"
)

// Query names.
const (
	MonthlyRollup            = "monthly_rollup"
	TopMarginDestinations    = "top_margin_destinations"
	RevenueByChannel         = "revenue_by_channel"
	SemesterGrowth           = "semester_growth"
	LoyaltyScore             = "loyalty_score"
	DestinationProfitability = "destination_profitability"
)

// Query is one named analytical query rendered for a dialect.
type Query struct {
	Name string
	// Label is the report section letter; empty when the query is not
	// part of the report.
	Label         string
	Title         string
	Justification string
	SQL           string
}

type querySource struct {
	name, label, title, justification, sql string
}

// MinTopMarginBookings is the least number of bookings a destination needs
// to be ranked by average margin.
const MinTopMarginBookings = 10

// TopMarginLimit caps the top-margin ranking.
const TopMarginLimit = 5

// GrowthYear is the year split into semesters by the growth query.
const GrowthYear = 2024

// GrowthThreshold is the H2 over H1 growth a client has to exceed.
const GrowthThreshold = 0.20

var sources = []querySource{
	{
		name:          MonthlyRollup,
		label:         "a",
		title:         "Reservas por mês",
		justification: "Cálculo do total de reservas, receita, custo e margem por mês (Receita - Custo).",
		sql: `
    SELECT
        {{ym "dt_reserva"}} AS mes,
        COUNT(id_reserva) AS total_reservas,
        SUM(COALESCE(receita, 0)) AS receita_total,
        SUM(COALESCE(custo, 0)) AS custo_total,
        SUM(COALESCE(receita, 0) - COALESCE(custo, 0)) AS margem_total
    FROM
        reservas
    WHERE
        dt_reserva IS NOT NULL
    GROUP BY
        mes
    ORDER BY
        mes;
`,
	},
	{
		name:          TopMarginDestinations,
		label:         "b",
		title:         "Destinos com maior margem média",
		justification: "Lista os 5 destinos com maior margem média, considerando pelo menos 10 reservas válidas.",
		sql: `
    SELECT
        destino,
        COUNT(id_reserva) AS total_reservas,
        AVG(COALESCE(receita, 0) - COALESCE(custo, 0)) AS margem_media
    FROM
        reservas
    GROUP BY
        destino
    HAVING
        COUNT(id_reserva) >= {{.MinBookings}}
    ORDER BY
        margem_media DESC, destino
    LIMIT {{.Limit}};
`,
	},
	{
		name:          RevenueByChannel,
		label:         "c",
		title:         "Receita por tipo de cliente e canal",
		justification: "Receita total e participação percentual por tipo de cliente e canal de venda.",
		sql: `
    WITH vendas_agrupadas AS (
        SELECT
            c.tipo_cliente,
            CASE
                WHEN LOWER(r.canal_venda) IN ({{.OnlineVariants}}) THEN '{{.OnlineChannel}}'
                ELSE r.canal_venda
            END AS canal_venda_padronizado,
            SUM(COALESCE(r.receita, 0)) AS receita_total
        FROM
            reservas r
        JOIN
            clientes c ON r.cliente = c.cliente
        GROUP BY
            c.tipo_cliente, canal_venda_padronizado
    )
    SELECT
        tipo_cliente,
        canal_venda_padronizado,
        receita_total,
        COALESCE(receita_total * 100.0 / NULLIF(SUM(receita_total) OVER (), 0), 0) AS participacao_percentual
    FROM
        vendas_agrupadas
    ORDER BY
        tipo_cliente, receita_total DESC;
`,
	},
	{
		name:          SemesterGrowth,
		label:         "d",
		title:         "Crescimento semestral de clientes",
		justification: "Identificação dos clientes com aumento de receita superior a 20% entre o 1º e o 2º semestre de 2024.",
		sql: `
    WITH receita_semestral AS (
        SELECT
            cliente,
            CASE
                WHEN {{month "dt_reserva"}} <= 6 THEN 'H1'
                ELSE 'H2'
            END AS semestre,
            SUM(COALESCE(receita, 0)) AS receita_total
        FROM
            reservas
        WHERE
            {{year "dt_reserva"}} = {{.Year}}
        GROUP BY
            cliente, semestre
    ),
    receita_pivotada AS (
        SELECT
            cliente,
            SUM(CASE WHEN semestre = 'H1' THEN receita_total ELSE 0 END) AS receita_h1,
            SUM(CASE WHEN semestre = 'H2' THEN receita_total ELSE 0 END) AS receita_h2
        FROM
            receita_semestral
        GROUP BY
            cliente
    )
    SELECT
        cliente,
        receita_h1,
        receita_h2,
        ((receita_h2 - receita_h1) * 1.0 / receita_h1) * 100 AS crescimento_percentual
    FROM
        receita_pivotada
    WHERE
        receita_h1 > 0
        AND ((receita_h2 - receita_h1) * 1.0 / receita_h1) > {{.Threshold}}
    ORDER BY
        crescimento_percentual DESC, cliente;
`,
	},
	{
		name:          LoyaltyScore,
		label:         "e",
		title:         "Score de fidelidade",
		justification: "Indicador de fidelidade que combina tempo de parceria, log(reservas) e receita média.",
		sql: `
    WITH raw_metrics AS (
        SELECT
            c.cliente,
            c.tipo_cliente,
            c.uf,
            c.tempo_parceria_anos,
            COALESCE({{log10 "NULLIF(COUNT(r.id_reserva), 0)"}}, 0) AS log_total_reservas,
            COALESCE(AVG(r.receita), 0) AS receita_media
        FROM
            clientes c
        LEFT JOIN
            reservas r ON c.cliente = r.cliente
        GROUP BY
            c.cliente, c.tipo_cliente, c.uf, c.tempo_parceria_anos
    ),
    metrics_min_max AS (
        SELECT
            *,
            MIN(tempo_parceria_anos) OVER () AS min_parceria,
            MAX(tempo_parceria_anos) OVER () AS max_parceria,
            MIN(log_total_reservas) OVER () AS min_log_reservas,
            MAX(log_total_reservas) OVER () AS max_log_reservas,
            MIN(receita_media) OVER () AS min_receita_media,
            MAX(receita_media) OVER () AS max_receita_media
        FROM
            raw_metrics
    ),
    normalized_scores AS (
        SELECT
            cliente,
            tipo_cliente,
            uf,
            COALESCE(
                (tempo_parceria_anos - min_parceria) / NULLIF(CAST(max_parceria - min_parceria AS DOUBLE PRECISION), 0),
                0
            ) AS norm_parceria,
            COALESCE(
                (log_total_reservas - min_log_reservas) / NULLIF(CAST(max_log_reservas - min_log_reservas AS DOUBLE PRECISION), 0),
                0
            ) AS norm_log_reservas,
            COALESCE(
                (receita_media - min_receita_media) / NULLIF(CAST(max_receita_media - min_receita_media AS DOUBLE PRECISION), 0),
                0
            ) AS norm_receita_media
        FROM
            metrics_min_max
    )
    SELECT
        n.cliente,
        n.tipo_cliente,
        n.uf,
        (
            (n.norm_parceria * 0.40) +
            (n.norm_log_reservas * 0.30) +
            (n.norm_receita_media * 0.30)
        ) * 100 AS score_fidelidade
    FROM
        normalized_scores n
    ORDER BY
        score_fidelidade DESC, n.cliente;
`,
	},
	{
		name:  DestinationProfitability,
		title: "Rentabilidade por destino",
		sql: `
    SELECT
        d.destino,
        d.pais,
        d.continente,
        AVG(COALESCE(r.receita, 0) - COALESCE(r.custo, 0)) AS margem_media
    FROM
        destinos d
    JOIN
        reservas r ON d.destino = r.destino
    GROUP BY
        d.destino, d.pais, d.continente
    HAVING
        COUNT(r.id_reserva) > 0
    ORDER BY
        margem_media DESC, d.destino;
`,
	},
}

// templateParams are the constants substituted into the query text.
type templateParams struct {
	MinBookings    int
	Limit          int
	Year           int
	Threshold      float64
	OnlineChannel  string
	OnlineVariants string
}

// QuerySet is the full set of queries rendered for one dialect.
type QuerySet struct {
	Dialect db.Dialect
	byName  map[string]Query
	order   []string
}

// NewQuerySet renders every query for the given dialect.
func NewQuerySet(d db.Dialect) (*QuerySet, error) {
	funcs := template.FuncMap{
		"ym":    d.YearMonth,
		"year":  d.Year,
		"month": d.Month,
		"log10": d.Log10,
	}
	params := templateParams{
		MinBookings:    MinTopMarginBookings,
		Limit:          TopMarginLimit,
		Year:           GrowthYear,
		Threshold:      GrowthThreshold,
		OnlineChannel:  models.OnlineChannel,
		OnlineVariants: quoteList(models.OnlineChannelVariants),
	}

	qs := &QuerySet{Dialect: d, byName: make(map[string]Query, len(sources))}
	for _, src := range sources {
		tmpl, err := template.New(src.name).Funcs(funcs).Parse(src.sql)
		if err != nil {
			return nil, fmt.Errorf("parse query %s: %w", src.name, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, params); err != nil {
			return nil, fmt.Errorf("render query %s: %w", src.name, err)
		}
		qs.byName[src.name] = Query{
			Name:          src.name,
			Label:         src.label,
			Title:         src.title,
			Justification: src.justification,
			SQL:           b.String(),
		}
		qs.order = append(qs.order, src.name)
	}
	return qs, nil
}

// MustQuerySet is NewQuerySet for the built-in queries, which always render.
func MustQuerySet(d db.Dialect) *QuerySet {
	qs, err := NewQuerySet(d)
	if err != nil {
		panic(err)
	}
	return qs
}

// Get returns the named query.
func (qs *QuerySet) Get(name string) (Query, bool) {
	q, ok := qs.byName[name]
	return q, ok
}

// All returns every query in declaration order.
func (qs *QuerySet) All() []Query {
	out := make([]Query, 0, len(qs.order))
	for _, name := range qs.order {
		out = append(out, qs.byName[name])
	}
	return out
}

// Report returns the labelled queries in label order.
func (qs *QuerySet) Report() []Query {
	var out []Query
	for _, q := range qs.All() {
		if q.Label != "" {
			out = append(out, q)
		}
	}
	return out
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}

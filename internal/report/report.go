// Package report renders the labelled analytical queries and their results
// into the plain-text SQL report handed to the business team.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/diewo77/viajante/internal/analytics"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/dustin/go-humanize"
)

const (
	// FileName is the attachment name of the rendered report.
	FileName = "relatorio_sql_viajante.sql"

	// MaxRows is how many result rows each section shows.
	MaxRows = 15

	minColumnWidth = 20
	numberFormat   = "#.###,##"
	timeLayout     = "2006-01-02 15:04:05"
)

var rule = "-- " + strings.Repeat("=", 91)

// Tabulator runs a query and returns its untyped result.
type Tabulator interface {
	Tabulate(ctx context.Context, sql string) (*analytics.Table, error)
}

// Renderer builds the report. Now defaults to time.Now.
type Renderer struct {
	exec    Tabulator
	queries []analytics.Query
	Now     func() time.Time
}

// NewRenderer renders the given queries, in order, through exec.
func NewRenderer(exec Tabulator, queries []analytics.Query) *Renderer {
	return &Renderer{exec: exec, queries: queries, Now: time.Now}
}

// Render executes every query and returns the whole document. A failing
// query is annotated in its own section and does not stop the others.
func (r *Renderer) Render(ctx context.Context) string {
	parts := []string{
		"-- Arquivo de Entrega: Respostas SQL para o Desafio Viajante",
		"-- Gerado em: " + r.Now().Format(timeLayout),
		"--",
	}
	for _, q := range r.queries {
		parts = append(parts, r.section(ctx, q)...)
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) section(ctx context.Context, q analytics.Query) []string {
	label := strings.ToUpper(q.Label)
	parts := []string{
		"\n" + rule,
		fmt.Sprintf("-- PERGUNTA %s: %s", label, q.Justification),
		rule,
		"\n" + q.SQL + "\n",
		fmt.Sprintf("-- COMENTÁRIO: A consulta acima calcula a resposta para a pergunta %s.", label),
	}

	table, err := r.exec.Tabulate(ctx, q.SQL)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("query", q.Name).Msg("report query failed")
		return append(parts, "\n-- ERRO AO EXECUTAR CONSULTA: "+err.Error())
	}

	parts = append(parts, fmt.Sprintf("\n-- RESULTADO (Primeiras %d linhas):\n", MaxRows))
	if len(table.Rows) == 0 {
		return append(parts, "-- NENHUM RESULTADO ENCONTRADO.")
	}

	widths := make([]int, len(table.Columns))
	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = max(utf8.RuneCountInString(col), minColumnWidth)
		header[i] = pad(col, widths[i])
	}
	headerLine := strings.Join(header, " | ")
	parts = append(parts,
		"-- "+headerLine,
		"-- "+strings.Repeat("-", utf8.RuneCountInString(headerLine)),
	)

	rows := table.Rows
	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
	}
	for _, row := range rows {
		cells := make([]string, len(widths))
		for i := range widths {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[i] = pad(FormatValue(v), widths[i])
		}
		parts = append(parts, "-- "+strings.Join(cells, " | "))
	}
	return parts
}

// FormatValue renders one cell: numbers as 1.234,56, timestamps as
// YYYY-MM-DD HH:MM:SS, nil as NULL and anything else as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return humanize.FormatFloat(numberFormat, x)
	case float32:
		return humanize.FormatFloat(numberFormat, float64(x))
	case int:
		return humanize.FormatFloat(numberFormat, float64(x))
	case int32:
		return humanize.FormatFloat(numberFormat, float64(x))
	case int64:
		return humanize.FormatFloat(numberFormat, float64(x))
	case uint64:
		return humanize.FormatFloat(numberFormat, float64(x))
	case time.Time:
		return x.Format(timeLayout)
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// pad left-aligns s in a field of width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

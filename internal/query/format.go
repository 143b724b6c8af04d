package query

import (
	"fmt"
	"sort"
	"strings"

	"taxitalk/internal/warehouse"
)

// maxDisplayRows bounds how many rows reach the interpretation prompt.
const maxDisplayRows = 5

var currencyMarkers = []string{"fare", "amount", "total", "tip"}

// FormatRows renders at most maxDisplayRows rows with unit-aware number
// formatting: distance columns get a unit suffix, currency columns a dollar
// prefix, other floats two decimals, everything else passes through.
func FormatRows(rows []warehouse.Row) []map[string]string {
	if len(rows) > maxDisplayRows {
		rows = rows[:maxDisplayRows]
	}

	formatted := make([]map[string]string, len(rows))
	for i, row := range rows {
		out := make(map[string]string, len(row))
		for col, val := range row {
			out[col] = formatValue(col, val)
		}
		formatted[i] = out
	}
	return formatted
}

func formatValue(col string, val any) string {
	if val == nil {
		return "NULL"
	}

	f, isNumber := toFloat(val)
	if !isNumber {
		return fmt.Sprintf("%v", val)
	}

	lower := strings.ToLower(col)
	switch {
	case strings.Contains(lower, "distance"):
		return fmt.Sprintf("%.2f mi", f)
	case isCurrencyColumn(lower):
		return fmt.Sprintf("$%.2f", f)
	case isIntegral(val):
		return fmt.Sprintf("%d", int64(f))
	default:
		return fmt.Sprintf("%.2f", f)
	}
}

func isCurrencyColumn(lower string) bool {
	for _, marker := range currencyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func isIntegral(val any) bool {
	switch val.(type) {
	case int, int32, int64:
		return true
	}
	return false
}

// RenderRows flattens formatted rows into prompt-ready text, one line per
// row with columns in a stable order.
func RenderRows(rows []map[string]string) string {
	var b strings.Builder
	for i, row := range rows {
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Fila %d: ", i+1)
		for j, col := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", col, row[col])
		}
	}
	return b.String()
}

package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matzehuels/vitalsgrid/pkg/tile"
)

// number converts a row value to float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// column extracts key from every row, skipping rows without a number.
func column(rows []tile.Row, key string) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if f, ok := number(r[key]); ok {
			out = append(out, f)
		}
	}
	return out
}

// name returns the row's "name" field as a string.
func name(r tile.Row) string {
	switch v := r["name"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func bounds(vals ...[]float64) (lo, hi float64, ok bool) {
	for _, vs := range vals {
		for _, v := range vs {
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi, ok
}

// resample picks n evenly spaced values from vs.
func resample(vs []float64, n int) []float64 {
	if n <= 0 || len(vs) == 0 {
		return nil
	}
	if len(vs) <= n {
		return vs
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = vs[i*len(vs)/n]
	}
	return out
}

// formatValue prints v compactly: 1234567 -> 1.2M, 0.0123 -> 0.012.
func formatValue(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return strconv.FormatFloat(v/1e9, 'f', 1, 64) + "B"
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 1, 64) + "M"
	case abs >= 1e4:
		return strconv.FormatFloat(v/1e3, 'f', 1, 64) + "k"
	case abs >= 100 || v == float64(int64(v)):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
}

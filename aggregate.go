package arrowdoc

import (
	"math"
	"sort"
	"strconv"
)

// extract returns the raw values of field across docs, in Data order.
func extract(docs []Document, field string) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d[field])
	}
	return out
}

// extractNumerical coerces each value via parse-to-float and drops anything
// non-finite.
func extractNumerical(docs []Document, field string) []float64 {
	out := make([]float64, 0, len(docs))
	for _, d := range docs {
		v, ok := toNumeric(d[field])
		if ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func toNumeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func aggMin(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

func aggMax(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m, true
}

func aggAvg(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// aggStdDev returns the population standard deviation.
func aggStdDev(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean, _ := aggAvg(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values))), true
}

// aggMode returns the value with the highest occurrence count, or
// (0, false) over an empty field.
func aggMode(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	counts := make(map[float64]int)
	for _, v := range values {
		counts[v]++
	}
	var best float64
	bestCount := -1
	// Deterministic tie-break: lowest value wins among equally-frequent
	// values, by scanning the sorted distinct values.
	distinct := make([]float64, 0, len(counts))
	for v := range counts {
		distinct = append(distinct, v)
	}
	sort.Float64s(distinct)
	for _, v := range distinct {
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best, true
}

// aggMedian returns the middle value, or the mean of the two middle values
// for an even-length projection.
func aggMedian(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// minRecordIndex and maxRecordIndex find the document whose numeric field
// value is the min/max, returning its position in docs.
func minRecordIndex(docs []Document, field string) (int, bool) {
	best := -1
	var bestVal float64
	for i, d := range docs {
		v, ok := toNumeric(d[field])
		if !ok {
			continue
		}
		if best == -1 || v < bestVal {
			best = i
			bestVal = v
		}
	}
	return best, best != -1
}

func maxRecordIndex(docs []Document, field string) (int, bool) {
	best := -1
	var bestVal float64
	for i, d := range docs {
		v, ok := toNumeric(d[field])
		if !ok {
			continue
		}
		if best == -1 || v > bestVal {
			best = i
			bestVal = v
		}
	}
	return best, best != -1
}

package liquidity

import (
	"math"
	"sort"
	"time"
)

// DaysPerMonth converts day spans to fractional months
const DaysPerMonth = 30.44

// Observation is a single dated sample of a time series
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered collection of observations. Analyzers expect
// ascending date order; call SortByDate after assembling from unordered
// sources.
type Series []Observation

// SortByDate sorts the series ascending by date, stable for equal dates
func (s Series) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Values returns the raw value sequence in series order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, obs := range s {
		values[i] = obs.Value
	}
	return values
}

// Last returns the most recent observation
func (s Series) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// GrowthRate returns the percent change of the last observation relative to
// the observation `periods` back. Returns NaN when the history is too short
// or the base value is zero or undefined.
func (s Series) GrowthRate(periods int) float64 {
	if periods <= 0 || len(s) <= periods {
		return math.NaN()
	}
	current := s[len(s)-1].Value
	base := s[len(s)-1-periods].Value
	if base == 0 || math.IsNaN(base) || math.IsNaN(current) {
		return math.NaN()
	}
	return (current - base) / base * 100
}

// Returns computes period-over-period fractional changes. The result has
// len(s)-1 entries; an entry is NaN when its base value is zero or either
// value undefined.
func (s Series) Returns() []float64 {
	if len(s) < 2 {
		return nil
	}
	returns := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Value
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(s[i].Value) {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (s[i].Value - prev) / prev
	}
	return returns
}

// RecentTrendPercent returns the mean period-over-period change, in
// percent, over the trailing n observations. NaN entries are ignored; a
// window with no computable changes yields 0.
func (s Series) RecentTrendPercent(n int) float64 {
	if n > len(s) {
		n = len(s)
	}
	window := s[len(s)-n:]

	var sum float64
	var count int
	for i := 1; i < len(window); i++ {
		prev := window[i-1].Value
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(window[i].Value) {
			continue
		}
		sum += (window[i].Value - prev) / prev
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// Peak returns the maximum value in the series, NaN for an empty series
func (s Series) Peak() float64 {
	return s.extreme(func(a, b float64) bool { return a > b })
}

// Trough returns the minimum value in the series, NaN for an empty series
func (s Series) Trough() float64 {
	return s.extreme(func(a, b float64) bool { return a < b })
}

func (s Series) extreme(better func(a, b float64) bool) float64 {
	result := math.NaN()
	for _, obs := range s {
		if math.IsNaN(obs.Value) {
			continue
		}
		if math.IsNaN(result) || better(obs.Value, result) {
			result = obs.Value
		}
	}
	return result
}

// AlignDates inner-joins two series on date, returning paired value slices
// in ascending date order. Both inputs must already be date-sorted.
func AlignDates(a, b Series) ([]float64, []float64) {
	var left, right []float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Date.Before(b[j].Date):
			i++
		case b[j].Date.Before(a[i].Date):
			j++
		default:
			left = append(left, a[i].Value)
			right = append(right, b[j].Value)
			i++
			j++
		}
	}
	return left, right
}

// MonthsBetween returns the span between two dates in fractional months
func MonthsBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24 / DaysPerMonth
}

// Correlation computes the Pearson correlation coefficient of two equal
// length sequences, skipping pairs where either value is NaN. Returns NaN
// with fewer than two usable pairs or zero variance.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	var sumX, sumY float64
	var n int
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sumX += x[i]
		sumY += y[i]
		n++
	}
	if n < 2 {
		return math.NaN()
	}

	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

// meanSkipNaN averages the usable entries of a sequence, NaN when none
func meanSkipNaN(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

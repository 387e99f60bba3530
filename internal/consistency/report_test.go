package consistency

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportValidity(t *testing.T) {
	t.Run("empty report is valid", func(t *testing.T) {
		assert.True(t, NewReport().IsValid())
	})

	t.Run("validity derived from check list", func(t *testing.T) {
		r := NewReport()
		r.AddPassed("a", "ok")
		assert.True(t, r.IsValid())

		r.AddError("b", "broken", nil)
		assert.False(t, r.IsValid())

		// Validity must track the list, not a cached flag: removing the
		// error entry makes the report valid again.
		r.Checks = r.Checks[:1]
		assert.True(t, r.IsValid())
	})

	t.Run("skipped and warning checks never affect validity", func(t *testing.T) {
		r := NewReport()
		r.AddSkipped("a", "no data")
		r.AddWarning("b", "drift", nil)
		assert.True(t, r.IsValid())
	})
}

func TestReportSummarize(t *testing.T) {
	r := NewReport()
	r.AddPassed("a", "ok")
	r.AddPassed("b", "ok")
	r.AddWarning("c", "hmm", nil)
	r.AddError("d", "bad", nil)
	r.AddSkipped("e", "n/a")

	s := r.Summarize()
	assert.False(t, s.IsValid)
	assert.Equal(t, 5, s.TotalChecks)
	assert.Equal(t, 2, s.TotalPassed)
	assert.Equal(t, 1, s.TotalWarnings)
	assert.Equal(t, 1, s.TotalErrors)
	assert.Equal(t, 1, s.TotalSkipped)
	assert.Contains(t, s.String(), "errors=1")
}

func TestReportMerge(t *testing.T) {
	a := NewReport()
	a.AddPassed("first", "ok")

	b := NewReport()
	b.AddError("second", "bad", nil)

	a.Merge(b)
	require.Len(t, a.Checks, 2)
	assert.Equal(t, "first", a.Checks[0].CheckName)
	assert.Equal(t, "second", a.Checks[1].CheckName)
	assert.False(t, a.IsValid())

	a.Merge(nil) // must be a no-op
	assert.Len(t, a.Checks, 2)
}

func TestReportSerialization(t *testing.T) {
	r := NewReport()
	r.AddError("pct", "mismatch", map[string]interface{}{"expected": 10.0, "reported": 15.0})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Checks, 1)
	assert.Equal(t, StatusError, decoded.Checks[0].Status)
	assert.Equal(t, 10.0, decoded.Checks[0].Details["expected"])
}

func TestMetricSampleDefined(t *testing.T) {
	assert.True(t, MetricSample{Name: "M1", Value: 5}.Defined())
	assert.False(t, MetricSample{Name: "M1", Value: nan()}.Defined())
}

func nan() float64 {
	var zero float64
	return zero / zero
}

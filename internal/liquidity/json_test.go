package liquidity

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultsMarshalWithoutGDP(t *testing.T) {
	analyzer := NewAggregatesAnalyzer(nil)

	analysis, err := analyzer.AnalyzeAggregates(context.Background(), map[string]Series{
		"M2": compounding(26, 4000, 0.01),
	}, nil)
	require.NoError(t, err)
	require.True(t, math.IsNaN(analysis.Aggregates["M2"].CurrentVelocity))

	data, err := json.Marshal(analysis)
	require.NoError(t, err, "NaN velocity must marshal as null")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	aggregates := decoded["aggregates"].(map[string]interface{})
	m2 := aggregates["M2"].(map[string]interface{})
	assert.Nil(t, m2["current_velocity"])
	assert.NotNil(t, m2["current_yoy_growth"])
}

func TestAssetCorrelationMarshalsLagMap(t *testing.T) {
	corr := AssetCorrelation{
		AssetClass:         "equities",
		LevelsCorrelation:  0.9,
		ReturnsCorrelation: math.NaN(),
		LagCorrelations:    map[int]float64{1: 0.5, 3: math.NaN()},
	}

	data, err := json.Marshal(corr)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["returns_correlation"])

	lags := decoded["lag_correlations"].(map[string]interface{})
	assert.Equal(t, 0.5, lags["1"])
	assert.Nil(t, lags["3"])
}

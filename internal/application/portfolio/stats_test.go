package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentileNearestRank(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	tests := []struct {
		p    float64
		want float64
	}{
		{0.25, 20}, // floor(4*0.25)=1
		{0.50, 30}, // floor(4*0.50)=2
		{0.75, 40}, // floor(4*0.75)=3
		{0.90, 40}, // floor(4*0.90)=3
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentile(sorted, tt.p))
	}
}

func TestPercentileClampsAndHandlesEmpty(t *testing.T) {
	assert.Equal(t, 0.0, percentile(nil, 0.5))
	assert.Equal(t, 7.0, percentile([]float64{7}, 0.99))
	assert.Equal(t, 9.0, percentile([]float64{5, 9}, 1.0), "index n clamps to the last element")
}

func TestHHIBounds(t *testing.T) {
	// single bucket holding everything
	assert.InDelta(t, 10000, hhi([]float64{42}), 1e-9)

	// two equal shares
	assert.InDelta(t, 5000, hhi([]float64{1, 1}), 1e-9)

	// n equal shares approach 10000/n
	assert.InDelta(t, 2500, hhi([]float64{3, 3, 3, 3}), 1e-9)

	// empty input
	assert.Equal(t, 0.0, hhi(nil))

	// any distribution stays within [0, 10000]
	mixed := hhi([]float64{1, 2, 3, 4, 90})
	assert.GreaterOrEqual(t, mixed, 0.0)
	assert.LessOrEqual(t, mixed, 10000.0)
}

func TestConcentrationLabel(t *testing.T) {
	assert.Equal(t, "Low Concentration", concentrationLabel(1499.99))
	assert.Equal(t, "Moderate Concentration", concentrationLabel(1500))
	assert.Equal(t, "Moderate Concentration", concentrationLabel(2499.99))
	assert.Equal(t, "High Concentration", concentrationLabel(2500))
	assert.Equal(t, "High Concentration", concentrationLabel(5000))
}

func TestStdDevPopulation(t *testing.T) {
	// mean 5, squared deviations 9+1+1+9, population variance 5
	assert.InDelta(t, 2.2360679, stdDev([]float64{2, 4, 6, 8}), 1e-6)
	assert.Equal(t, 0.0, stdDev(nil))
	assert.Equal(t, 0.0, stdDev([]float64{3}))
}

func TestBenchmarkCategory(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{85, "Excellent"},
		{80, "Excellent"},
		{79.99, "Good"},
		{70, "Good"},
		{65, "Average"},
		{60, "Average"},
		{59.99, "Below Average"},
		{40, "Below Average"},
		{39.99, "Poor"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, benchmarkCategory(tt.score), "score %v", tt.score)
	}
}

func TestRiskProfile(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{90, "Low Risk"},
		{75, "Low Risk"},
		{74.99, "Medium Risk"},
		{60, "Medium Risk"},
		{59.99, "High Risk"},
		{45, "High Risk"},
		{44.99, "Very High Risk"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, riskProfile(tt.score), "score %v", tt.score)
	}
}

func TestBasicAggregatesEmptySafe(t *testing.T) {
	assert.Equal(t, 0.0, meanFloat(nil))
	assert.Equal(t, 0.0, minFloat(nil))
	assert.Equal(t, 0.0, maxFloat(nil))
	assert.Equal(t, 0.0, sumFloat(nil))
	assert.Equal(t, 0.0, percentOf(5, 0))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 66.67, round2(200.0/3))
}

package compare

import (
	"math"
	"testing"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/stretchr/testify/assert"
)

func ingestionSample(database string, value float64) core.MetricSample {
	return core.MetricSample{
		Database: database,
		Category: core.CategoryIngestion,
		Metric:   "insert_rate",
		Value:    value,
		Unit:     "rows/sec",
		Weight:   1,
	}
}

func TestNormalizeInsertRate(t *testing.T) {
	samples := []core.MetricSample{
		ingestionSample("PostgreSQL", 50000),
		ingestionSample("InfluxDB", 15000),
		ingestionSample("MongoDB", 8000),
	}

	scores := Normalize(samples)
	assert.Len(t, scores, 3)

	byDatabase := map[string]float64{}
	for _, score := range scores {
		byDatabase[score.Database] = score.Score
	}

	assert.Equal(t, float64(100), byDatabase["PostgreSQL"])
	assert.Equal(t, float64(0), byDatabase["MongoDB"])
	assert.InDelta(t, 16.67, byDatabase["InfluxDB"], 0.01)
}

func TestNormalizeZeroRange(t *testing.T) {
	/*
		三个数据库同值时Max==Min，全部归一化为100，不会除零
	*/
	samples := []core.MetricSample{
		ingestionSample("PostgreSQL", 42),
		ingestionSample("InfluxDB", 42),
		ingestionSample("MongoDB", 42),
	}

	for _, score := range Normalize(samples) {
		assert.Equal(t, float64(100), score.Score)
	}
}

func TestNormalizeSingleDatabase(t *testing.T) {
	/*
		指标仅有一个数据库有数据时同样是Max==Min的情形，得100
	*/
	scores := Normalize([]core.MetricSample{ingestionSample("InfluxDB", 99999)})
	assert.Len(t, scores, 1)
	assert.Equal(t, float64(100), scores[0].Score)
}

func TestNormalizeLowerIsBetter(t *testing.T) {
	samples := []core.MetricSample{
		{Database: "PostgreSQL", Category: core.CategoryQuery, Metric: "query_latency_avg_ms", Value: 12, Unit: "ms", Weight: 1},
		{Database: "InfluxDB", Category: core.CategoryQuery, Metric: "query_latency_avg_ms", Value: 3, Unit: "ms", Weight: 1},
		{Database: "MongoDB", Category: core.CategoryQuery, Metric: "query_latency_avg_ms", Value: 30, Unit: "ms", Weight: 1},
	}

	byDatabase := map[string]float64{}
	for _, score := range Normalize(samples) {
		byDatabase[score.Database] = score.Score
	}

	// 延迟最低者得100，最高者得0
	assert.Equal(t, float64(100), byDatabase["InfluxDB"])
	assert.Equal(t, float64(0), byDatabase["MongoDB"])
	assert.InDelta(t, (30.0-12.0)/27.0*100, byDatabase["PostgreSQL"], 0.0001)
}

func TestNormalizeBoundsAndMonotonic(t *testing.T) {
	values := []float64{-300, -17.5, 0, 1, 250, 99999}
	samples := make([]core.MetricSample, 0, len(values)*2)
	for i, v := range values {
		samples = append(samples, core.MetricSample{
			Database: string(rune('A' + i)),
			Category: core.CategoryStorage,
			Metric:   "compression_rate",
			Value:    v,
		})
		samples = append(samples, core.MetricSample{
			Database: string(rune('A' + i)),
			Category: core.CategoryStorage,
			Metric:   "storage_size_mb",
			Value:    v,
		})
	}

	scores := Normalize(samples)
	assert.Len(t, scores, len(samples))

	higher := map[float64]float64{}
	lower := map[float64]float64{}
	for i, score := range scores {
		assert.False(t, math.IsNaN(score.Score))
		assert.True(t, score.Score >= 0 && score.Score <= 100)
		if score.Metric == "compression_rate" {
			higher[samples[i].Value] = score.Score
		} else {
			lower[samples[i].Value] = score.Score
		}
	}

	/*
		单调性：越大越好的指标中原始值严格更大则得分不减，
		越小越好的指标方向相反
	*/
	for i := 1; i < len(values); i++ {
		assert.True(t, higher[values[i]] >= higher[values[i-1]])
		assert.True(t, lower[values[i]] <= lower[values[i-1]])
	}
}

func TestNormalizeEmpty(t *testing.T) {
	// 空输入是合法的退化情形，不报错
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Stats(nil))
}

func TestStats(t *testing.T) {
	samples := []core.MetricSample{
		ingestionSample("PostgreSQL", 50000),
		ingestionSample("InfluxDB", 15000),
		ingestionSample("MongoDB", 8000),
	}

	stats := Stats(samples)
	assert.Len(t, stats, 1)
	assert.Equal(t, float64(8000), stats["insert_rate"].Min)
	assert.Equal(t, float64(50000), stats["insert_rate"].Max)
	assert.True(t, stats["insert_rate"].HigherIsBetter)
	assert.True(t, stats["insert_rate"].Min <= stats["insert_rate"].Max)
}

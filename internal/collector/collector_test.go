package collector

import (
	"context"
	"fmt"
	"testing"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestPostgresConfigComplete(t *testing.T) {
	config := &PostgresConfig{}
	err := config.Complete()
	assert.Error(t, err)

	config.DSN = "postgres://localhost:5432/bench?sslmode=disable"
	assert.NoError(t, config.Complete())
	assert.Equal(t, DefaultPostgresBatchSize, config.BatchSize)
	assert.Equal(t, DefaultPostgresNumRows, config.NumRows)
	assert.Equal(t, DefaultPostgresQueryRounds, config.QueryRounds)
}

func TestInfluxConfigComplete(t *testing.T) {
	config := &InfluxConfig{}
	assert.Error(t, config.Complete())

	config.URL = "http://localhost:8086"
	assert.Error(t, config.Complete())

	config.Token = "token"
	config.Org = "bench"
	config.Bucket = "readings"
	assert.NoError(t, config.Complete())
	assert.Equal(t, DefaultInfluxBatchSize, config.BatchSize)
}

func TestMongoConfigComplete(t *testing.T) {
	config := &MongoConfig{}
	assert.Error(t, config.Complete())

	config.URI = "mongodb://localhost:27017"
	assert.NoError(t, config.Complete())
	assert.Equal(t, "benchmark", config.Database)
	assert.Equal(t, DefaultMongoNumDocs, config.NumDocs)
}

func TestStorageVariantsFixed(t *testing.T) {
	/*
		变体清单是静态的，每个变体都带有固定的表名，
		不存在运行时拼出来的标识符
	*/
	assert.Len(t, PostgresStorageVariants, 3)
	for _, variant := range PostgresStorageVariants {
		assert.NotEmpty(t, variant.Name)
		assert.NotEmpty(t, variant.Table)
	}

	assert.Len(t, MongoDocumentVariants, 2)
	for _, variant := range MongoDocumentVariants {
		assert.NotEmpty(t, variant.Table)
	}
}

type fakeCollector struct {
	name    string
	samples []core.MetricSample
	err     error
}

func (f *fakeCollector) Name() string {
	return f.name
}

func (f *fakeCollector) Collect(_ context.Context, _ core.RunID) ([]core.MetricSample, error) {
	return f.samples, f.err
}

func TestCollectAll(t *testing.T) {
	good := &fakeCollector{
		name: "PostgreSQL",
		samples: []core.MetricSample{
			{Database: "PostgreSQL", Category: core.CategoryIngestion, Metric: "insert_rate", Value: 50000},
		},
	}
	bad := &fakeCollector{name: "InfluxDB", err: fmt.Errorf("连接超时")}

	/*
		一个收集器失败不影响其他收集器的数据
	*/
	samples := CollectAll(context.Background(), core.RunID("run_test"), []Collector{bad, good})
	assert.Len(t, samples, 1)
	assert.Equal(t, "PostgreSQL", samples[0].Database)
}

func TestPercentile(t *testing.T) {
	latencies := []float64{5, 1, 3, 2, 4}
	assert.Equal(t, float64(5), percentile(latencies, 0.95))
	assert.Equal(t, float64(3), percentile(latencies, 0.5))
	assert.Equal(t, float64(0), percentile(nil, 0.95))

	// percentile不应打乱调用者的序列
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, latencies)
}

func TestMean(t *testing.T) {
	assert.Equal(t, float64(2), mean([]float64{1, 2, 3}))
	assert.Equal(t, float64(0), mean(nil))
}

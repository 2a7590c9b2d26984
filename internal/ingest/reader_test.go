package ingest

import (
	"strings"
	"testing"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestReadSamples(t *testing.T) {
	input := strings.Join([]string{
		"database,category,metric,value,unit,weight",
		"PostgreSQL,ingestion,insert_rate,50000,rows/sec,1.0",
		"InfluxDB,ingestion,insert_rate,15000,rows/sec,1.0",
		"MongoDB,ingestion,insert_rate,8000,rows/sec,1.0",
		"PostgreSQL,query,query_latency_avg_ms,-12.5,ms,0.5",
	}, "\n")

	samples, rowErrors, err := ReadSamples(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Empty(t, rowErrors)
	assert.Len(t, samples, 4)

	assert.Equal(t, "PostgreSQL", samples[0].Database)
	assert.Equal(t, core.CategoryIngestion, samples[0].Category)
	assert.Equal(t, float64(50000), samples[0].Value)
	assert.Equal(t, "rows/sec", samples[0].Unit)

	// 负数值是允许的，归一化公式不要求正数
	assert.Equal(t, float64(-12.5), samples[3].Value)
}

func TestReadSamplesPartialTolerance(t *testing.T) {
	/*
		坏行不会使整批导入失败，有效行照常返回，
		每个坏行产生一条指明字段的错误
	*/
	input := strings.Join([]string{
		"database,category,metric,value,unit,weight",
		"PostgreSQL,ingestion,insert_rate,abc,rows/sec,1.0",
		"InfluxDB,ingestion,insert_rate,15000,rows/sec,1.0",
		"MongoDB,unknown_category,insert_rate,8000,rows/sec,1.0",
		"MongoDB,ingestion,insert_rate,8000,rows/sec,1.5",
		",ingestion,insert_rate,8000,rows/sec,1.0",
		"PostgreSQL,ingestion,,8000,rows/sec,1.0",
		"PostgreSQL,ingestion,insert_rate,NaN,rows/sec,1.0",
		"PostgreSQL,ingestion,insert_rate,50000,rows/sec,NaN",
	}, "\n")

	samples, rowErrors, err := ReadSamples(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Equal(t, "InfluxDB", samples[0].Database)

	assert.Len(t, rowErrors, 7)
	assert.Equal(t, "value", rowErrors[0].Field)
	assert.Equal(t, 2, rowErrors[0].Line)
	assert.Equal(t, "category", rowErrors[1].Field)
	assert.Equal(t, "weight", rowErrors[2].Field)
	assert.Equal(t, "database", rowErrors[3].Field)
	assert.Equal(t, "metric", rowErrors[4].Field)
	assert.Equal(t, "value", rowErrors[5].Field)
	// NaN能通过ParseFloat，权重校验需要显式拒绝它
	assert.Equal(t, "weight", rowErrors[6].Field)
	assert.Equal(t, 8, rowErrors[6].Line)

	// 错误信息应包含行号与字段名
	assert.Contains(t, rowErrors[0].Error(), "value")
}

func TestReadSamplesFieldCount(t *testing.T) {
	input := strings.Join([]string{
		"database,category,metric,value,unit,weight",
		"PostgreSQL,ingestion,insert_rate,50000",
		"InfluxDB,ingestion,insert_rate,15000,rows/sec,1.0",
	}, "\n")

	samples, rowErrors, err := ReadSamples(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Len(t, rowErrors, 1)
}

func TestReadSamplesEmpty(t *testing.T) {
	// 空输入是合法的退化情形
	samples, rowErrors, err := ReadSamples(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, samples)
	assert.Empty(t, rowErrors)
}

package report

import (
	"strings"
	"testing"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/stretchr/testify/assert"
)

func testResult() *compare.Result {
	samples := make([]core.MetricSample, 0)
	rates := map[string]float64{"PostgreSQL": 50000, "InfluxDB": 15000, "MongoDB": 8000}
	for db, rate := range rates {
		samples = append(samples, core.MetricSample{
			Database: db,
			Category: core.CategoryIngestion,
			Metric:   "insert_rate",
			Value:    rate,
			Unit:     "rows/sec",
			Weight:   1,
		})
	}
	latencies := map[string]float64{"PostgreSQL": 12, "InfluxDB": 3, "MongoDB": 30}
	for db, latency := range latencies {
		samples = append(samples, core.MetricSample{
			Database: db,
			Category: core.CategoryQuery,
			Metric:   "query_latency_avg_ms",
			Value:    latency,
			Unit:     "ms",
			Weight:   0.5,
		})
	}
	return compare.Run(core.RunID("run_test"), samples)
}

func TestBuild(t *testing.T) {
	r := Build(testResult())

	assert.Equal(t, core.RunID("run_test"), r.RunID)
	assert.Len(t, r.Ranking, 3)

	/*
		仅前三名有奖项标签
	*/
	assert.Equal(t, "Champion", r.Ranking[0].Award)
	assert.Equal(t, "Runner-up", r.Ranking[1].Award)
	assert.Equal(t, "Third place", r.Ranking[2].Award)

	// ingestion与query两个类别各有一个冠军
	assert.Len(t, r.CategoryWinners, 2)
	assert.Equal(t, core.CategoryIngestion, r.CategoryWinners[0].Category)
	assert.Equal(t, "PostgreSQL", r.CategoryWinners[0].Database)
	assert.Equal(t, core.CategoryQuery, r.CategoryWinners[1].Category)
	assert.Equal(t, "InfluxDB", r.CategoryWinners[1].Database)

	// 明细按(数据库,类别,指标)排序
	assert.Len(t, r.Details, 6)
	assert.Equal(t, "InfluxDB", r.Details[0].Database)
	assert.Equal(t, "MongoDB", r.Details[2].Database)
	assert.Equal(t, "PostgreSQL", r.Details[4].Database)

	// 加权得分 = 归一化得分×该行权重
	for _, row := range r.Details {
		if row.Database == "InfluxDB" && row.Metric == "query_latency_avg_ms" {
			assert.Equal(t, float64(100), row.NormalizedScore)
			assert.Equal(t, float64(50), row.WeightedScore)
		}
	}
}

func TestCategoryRankTies(t *testing.T) {
	scores := []core.CategoryScore{
		{Database: "A", Category: core.CategoryStorage, Score: 80},
		{Database: "C", Category: core.CategoryStorage, Score: 80},
		{Database: "B", Category: core.CategoryStorage, Score: 60},
	}

	rows := categoryPerformance(scores)
	assert.Len(t, rows, 3)

	/*
		类别内同分并列，名次跳过：1,1,3。并列按名称升序
	*/
	assert.Equal(t, "A", rows[0].Database)
	assert.Equal(t, 1, rows[0].CategoryRank)
	assert.Equal(t, "C", rows[1].Database)
	assert.Equal(t, 1, rows[1].CategoryRank)
	assert.Equal(t, "B", rows[2].Database)
	assert.Equal(t, 3, rows[2].CategoryRank)
}

func TestWriteRankingCSV(t *testing.T) {
	r := Build(testResult())

	b := &strings.Builder{}
	err := WriteRankingCSV(b, r.Ranking)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "rank,database,total_score,tier,award", lines[0])

	// 分数固定两位小数
	first := strings.Split(lines[1], ",")
	assert.Len(t, first, 5)
	assert.Equal(t, "1", first[0])
	assert.Regexp(t, `^\d+\.\d{2}$`, first[2])
}

func TestWriteCategoryCSV(t *testing.T) {
	r := Build(testResult())

	b := &strings.Builder{}
	err := WriteCategoryCSV(b, r.CategoryPerformance)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, "category,database,average_score,category_rank", lines[0])
	assert.Len(t, lines, 7)
}

func TestWriteDetailCSV(t *testing.T) {
	r := Build(testResult())

	b := &strings.Builder{}
	err := WriteDetailCSV(b, r.Details)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Equal(t, "database,category,metric,value,unit,normalized_score,weighted_score,notes",
		lines[0])
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[1], "InfluxDB,ingestion,insert_rate,15000,rows/sec,"))
}

func TestWriteMarkdownAndSummary(t *testing.T) {
	r := Build(testResult())

	b := &strings.Builder{}
	assert.NoError(t, WriteMarkdown(b, r))
	assert.Contains(t, b.String(), "# Database Benchmark Comparison Report")
	assert.Contains(t, b.String(), "## Final Ranking")
	assert.Contains(t, b.String(), "PostgreSQL")

	b = &strings.Builder{}
	assert.NoError(t, WriteExecutiveSummary(b, r))
	assert.Contains(t, b.String(), "OVERALL WINNER")
	assert.Contains(t, b.String(), "run_test")
}

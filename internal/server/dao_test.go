package server

import (
	"fmt"
	"os"
	"testing"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/stretchr/testify/assert"
)

// 测试需要一个可用的MySQL，通过环境变量MYSQL_DSN指定
func testDao(t *testing.T) Dao {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("未设置MYSQL_DSN，跳过需要数据库的测试")
	}

	dao, err := NewDao(dsn)
	if err != nil {
		t.Fatal(err)
	}
	return dao
}

func testSamples(runID core.RunID) []core.MetricSample {
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
	return samples
}

func TestDaoSaveMetricSamples(t *testing.T) {
	dao := testDao(t)
	runID := core.RunID("run_test_samples")
	defer func() { _ = dao.RemoveRun(runID) }()

	err := dao.SaveMetricSamples(runID, testSamples(runID))
	if !assert.NoError(t, err) {
		assert.FailNow(t, "保存样本失败")
	}

	samples, err := dao.QueryMetricSamples(runID)
	assert.NoError(t, err)
	assert.Len(t, samples, 3)

	/*
		重新保存会完整替换，不与旧数据合并
	*/
	err = dao.SaveMetricSamples(runID, testSamples(runID)[:1])
	assert.NoError(t, err)

	samples, err = dao.QueryMetricSamples(runID)
	assert.NoError(t, err)
	assert.Len(t, samples, 1)

	/*
		RunID为空是错误
	*/
	assert.Error(t, dao.SaveMetricSamples("", nil))
}

func TestDaoSaveComparison(t *testing.T) {
	dao := testDao(t)
	runID := core.RunID("run_test_comparison")
	defer func() { _ = dao.RemoveRun(runID) }()

	err := dao.SaveMetricSamples(runID, testSamples(runID))
	assert.NoError(t, err)

	result := compare.Run(runID, testSamples(runID))
	err = dao.SaveComparison(result)
	if !assert.NoError(t, err) {
		assert.FailNow(t, "保存比较结果失败")
	}

	scores, err := dao.QueryFinalScores(runID)
	assert.NoError(t, err)
	assert.Len(t, scores, 3)

	// 查询结果按名次排序
	assert.Equal(t, "PostgreSQL", scores[0].Database)
	assert.Equal(t, 1, scores[0].Ranking)
	assert.InDelta(t, 100, scores[0].TotalScore, 0.01)
	assert.Contains(t, scores[0].CategoryScores, core.CategoryIngestion)

	categoryScores, err := dao.QueryCategoryScores(runID)
	assert.NoError(t, err)
	assert.Len(t, categoryScores, 3)

	/*
		重算后保存会替换旧结果
	*/
	err = dao.SaveComparison(compare.Run(runID, testSamples(runID)[:2]))
	assert.NoError(t, err)

	scores, err = dao.QueryFinalScores(runID)
	assert.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestDaoQueryRunIDs(t *testing.T) {
	dao := testDao(t)

	runIDs := []core.RunID{"run_test_a", "run_test_b"}
	for _, runID := range runIDs {
		assert.NoError(t, dao.SaveMetricSamples(runID, testSamples(runID)))
	}
	defer func() {
		for _, runID := range runIDs {
			_ = dao.RemoveRun(runID)
		}
	}()

	all, err := dao.QueryRunIDs()
	assert.NoError(t, err)
	for _, runID := range runIDs {
		assert.Contains(t, all, runID)
	}

	latest, err := dao.QueryLatestRunID()
	assert.NoError(t, err)
	assert.NotEmpty(t, latest)

	for i, runID := range runIDs {
		assert.NoError(t, dao.RemoveRun(runID))
		samples, err := dao.QueryMetricSamples(runID)
		assert.NoError(t, err)
		assert.Empty(t, samples, fmt.Sprintf("第%d个运行删除后仍有数据", i))
	}
}

package collector

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
)

const (
	DefaultInfluxNumPoints   = 100000
	DefaultInfluxBatchSize   = 5000
	DefaultInfluxQueryRounds = 20
)

// InfluxBatchVariants 写入批大小的固定变体清单，
// 同一写入过程按清单逐项测量
var InfluxBatchVariants = []int{1000, 5000, 10000}

type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	NumPoints   int
	BatchSize   int
	QueryRounds int
}

func (c *InfluxConfig) Complete() error {
	if c.URL == "" {
		return fmt.Errorf("InfluxDB的URL不能为空")
	}
	if c.Token == "" {
		return fmt.Errorf("InfluxDB的Token不能为空")
	}
	if c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("InfluxDB的Org与Bucket不能为空")
	}
	if c.NumPoints <= 0 {
		c.NumPoints = DefaultInfluxNumPoints
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultInfluxBatchSize
	}
	if c.QueryRounds <= 0 {
		c.QueryRounds = DefaultInfluxQueryRounds
	}
	return nil
}

func NewInflux(config *InfluxConfig) (Collector, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}
	return &influxCollector{
		config: config,
		logger: log.New(os.Stdout, "influxdb: ", log.LstdFlags|log.Lmsgprefix),
	}, nil
}

type influxCollector struct {
	config *InfluxConfig
	logger *log.Logger
}

func (c *influxCollector) Name() string {
	return "InfluxDB"
}

func (c *influxCollector) Collect(ctx context.Context, runID core.RunID) ([]core.MetricSample, error) {
	client := influxdb2.NewClient(c.config.URL, c.config.Token)
	defer client.Close()

	health, err := client.Health(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "连接InfluxDB失败")
	}
	if health.Status != "pass" {
		return nil, fmt.Errorf("InfluxDB健康检查未通过，状态为%s", health.Status)
	}

	samples := make([]core.MetricSample, 0)

	sample := func(category core.Category, metric string, value float64, unit string, weight float64) {
		samples = append(samples, core.MetricSample{
			Database: c.Name(),
			Category: category,
			Metric:   metric,
			Value:    value,
			Unit:     unit,
			Weight:   weight,
		})
	}

	writeAPI := client.WriteAPIBlocking(c.config.Org, c.config.Bucket)

	c.logger.Println("开始写入测试")
	rate, payloadMB, err := c.benchmarkWrites(ctx, writeAPI, c.config.NumPoints, c.config.BatchSize)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIngestion, "write_rate", rate, "points/sec", 1)
	sample(core.CategoryStorage, "storage_size_mb", payloadMB, "mb", 1)

	for _, batchSize := range InfluxBatchVariants {
		variantRate, _, err := c.benchmarkWrites(ctx, writeAPI, c.config.NumPoints/10, batchSize)
		if err != nil {
			return nil, err
		}
		sample(core.CategoryIngestion, fmt.Sprintf("batch%d_write_rate", batchSize), variantRate, "points/sec", 0.2)
	}

	queryAPI := client.QueryAPI(c.config.Org)

	c.logger.Println("开始查询测试")
	avg, p95, err := c.benchmarkQueries(ctx, queryAPI)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryQuery, "query_latency_avg_ms", avg, "ms", 1)
	sample(core.CategoryQuery, "query_latency_p95_ms", p95, "ms", 0.5)

	c.logger.Println("开始索引测试")
	improvement, err := c.benchmarkTagIndex(ctx, queryAPI)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIndexing, "index_improvement_ratio", improvement, "x", 1)

	c.logger.Println("开始认证开销测试")
	authTime, err := c.benchmarkAuth(ctx, queryAPI)
	if err != nil {
		return nil, err
	}
	sample(core.CategorySecurity, "auth_query_time_ms", authTime, "ms", 1)

	return samples, nil
}

// benchmarkWrites 按批写入合成的传感器数据点，
// 返回每秒点数与写入的line protocol数据量（MB）
func (c *influxCollector) benchmarkWrites(ctx context.Context, writeAPI api.WriteAPIBlocking, numPoints, batchSize int) (rate, payloadMB float64, err error) {
	rng := rand.New(rand.NewSource(42))
	base := time.Now().Add(-24 * time.Hour)

	var payloadBytes int
	start := time.Now()
	batch := make([]*write.Point, 0, batchSize)
	for i := 0; i < numPoints; i++ {
		point := influxdb2.NewPoint("health_readings",
			map[string]string{"device_id": fmt.Sprintf("dev-%d", rng.Intn(500))},
			map[string]interface{}{
				"heart_rate":  60 + rng.Intn(60),
				"spo2":        90 + rng.Intn(10),
				"temperature": 36 + rng.Float64()*2,
			},
			base.Add(time.Duration(i)*time.Second))
		batch = append(batch, point)
		payloadBytes += len(write.PointToLineProtocol(point, time.Nanosecond))

		if len(batch) == batchSize || i == numPoints-1 {
			if err := writeAPI.WritePoint(ctx, batch...); err != nil {
				return 0, 0, errors.Wrap(err, "写入数据点失败")
			}
			batch = batch[:0]
		}
	}

	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		return 0, 0, nil
	}
	return float64(numPoints) / elapsed, float64(payloadBytes) / 1024 / 1024, nil
}

func (c *influxCollector) fluxRange(filter string) string {
	return fmt.Sprintf(`from(bucket: %q) |> range(start: -24h) %s |> mean()`, c.config.Bucket, filter)
}

func (c *influxCollector) benchmarkQueries(ctx context.Context, queryAPI api.QueryAPI) (avg, p95 float64, err error) {
	probes := []string{
		c.fluxRange(`|> filter(fn: (r) => r._measurement == "health_readings" and r._field == "heart_rate")`),
		c.fluxRange(`|> filter(fn: (r) => r._measurement == "health_readings" and r.device_id == "dev-7")`),
	}

	latencies := make([]float64, 0, c.config.QueryRounds*len(probes))
	for round := 0; round < c.config.QueryRounds; round++ {
		for _, flux := range probes {
			elapsed, err := c.timeQuery(ctx, queryAPI, flux)
			if err != nil {
				return 0, 0, err
			}
			latencies = append(latencies, elapsed)
		}
	}
	return mean(latencies), percentile(latencies, 0.95), nil
}

// benchmarkTagIndex 带tag过滤（走倒排索引）与仅按field过滤的同范围查询延迟比
func (c *influxCollector) benchmarkTagIndex(ctx context.Context, queryAPI api.QueryAPI) (float64, error) {
	unindexed := c.fluxRange(`|> filter(fn: (r) => r._measurement == "health_readings" and r._field == "heart_rate" and r._value > 100)`)
	indexed := c.fluxRange(`|> filter(fn: (r) => r._measurement == "health_readings" and r.device_id == "dev-7" and r._field == "heart_rate")`)

	before, err := c.timeQueryRounds(ctx, queryAPI, unindexed, 7)
	if err != nil {
		return 0, err
	}
	after, err := c.timeQueryRounds(ctx, queryAPI, indexed, 7)
	if err != nil {
		return 0, err
	}

	if after == 0 {
		return 1, nil
	}
	return before / after, nil
}

// benchmarkAuth 每次查询都要经过token鉴权，用轻量查询测量鉴权往返耗时
func (c *influxCollector) benchmarkAuth(ctx context.Context, queryAPI api.QueryAPI) (float64, error) {
	return c.timeQueryRounds(ctx, queryAPI, `buckets() |> limit(n: 1)`, 7)
}

func (c *influxCollector) timeQueryRounds(ctx context.Context, queryAPI api.QueryAPI, flux string, rounds int) (float64, error) {
	latencies := make([]float64, 0, rounds)
	for i := 0; i < rounds; i++ {
		elapsed, err := c.timeQuery(ctx, queryAPI, flux)
		if err != nil {
			return 0, err
		}
		latencies = append(latencies, elapsed)
	}
	return mean(latencies), nil
}

func (c *influxCollector) timeQuery(ctx context.Context, queryAPI api.QueryAPI, flux string) (float64, error) {
	start := time.Now()
	result, err := queryAPI.Query(ctx, flux)
	if err != nil {
		return 0, errors.Wrap(err, "执行Flux查询失败")
	}
	for result.Next() {
	}
	if result.Err() != nil {
		return 0, errors.Wrap(result.Err(), "读取Flux查询结果失败")
	}
	return float64(time.Since(start).Microseconds()) / 1000, nil
}

package collector

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
)

const (
	DefaultPostgresBatchSize   = 1000
	DefaultPostgresNumRows     = 100000
	DefaultPostgresQueryRounds = 20
)

// PostgresStorageVariants 存储配置变体的固定清单。
// 每个变体自带表名与建表选项，测量过程对清单逐项执行。
var PostgresStorageVariants = []StorageVariant{
	{Name: "heap", Table: "bench_readings_heap", Options: ""},
	{Name: "fillfactor70", Table: "bench_readings_ff70", Options: "WITH (fillfactor=70)"},
	{Name: "unlogged", Table: "bench_readings_unlogged", Options: ""},
}

type PostgresConfig struct {
	DSN         string // lib/pq连接串
	BatchSize   int    // 单批插入的行数
	NumRows     int    // 写入测试的总行数
	QueryRounds int    // 查询测试的轮数
}

func (c *PostgresConfig) Complete() error {
	if c.DSN == "" {
		return fmt.Errorf("PostgreSQL的DSN不能为空")
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultPostgresBatchSize
	}
	if c.NumRows <= 0 {
		c.NumRows = DefaultPostgresNumRows
	}
	if c.QueryRounds <= 0 {
		c.QueryRounds = DefaultPostgresQueryRounds
	}
	return nil
}

func NewPostgres(config *PostgresConfig) (Collector, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}
	return &postgresCollector{
		config: config,
		logger: log.New(os.Stdout, "postgres: ", log.LstdFlags|log.Lmsgprefix),
	}, nil
}

type postgresCollector struct {
	config *PostgresConfig
	logger *log.Logger
}

func (c *postgresCollector) Name() string {
	return "PostgreSQL"
}

func (c *postgresCollector) Collect(ctx context.Context, runID core.RunID) ([]core.MetricSample, error) {
	db, err := sql.Open("postgres", c.config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "打开PostgreSQL连接失败")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "连接PostgreSQL失败")
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

	c.logger.Println("开始写入测试")
	insertRate, err := c.benchmarkIngestion(ctx, db)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIngestion, "insert_rate", insertRate, "rows/sec", 1)

	c.logger.Println("开始查询测试")
	avg, p95, err := c.benchmarkQueries(ctx, db)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryQuery, "query_latency_avg_ms", avg, "ms", 1)
	sample(core.CategoryQuery, "query_latency_p95_ms", p95, "ms", 0.5)

	c.logger.Println("开始存储测试")
	tableMB, indexMB, err := c.measureStorage(ctx, db)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryStorage, "table_size_mb", tableMB, "mb", 1)
	sample(core.CategoryStorage, "index_size_mb", indexMB, "mb", 0.5)

	for _, variant := range PostgresStorageVariants {
		rate, sizeMB, err := c.benchmarkVariant(ctx, db, variant)
		if err != nil {
			return nil, err
		}
		sample(core.CategoryStorage, variant.Name+"_table_size_mb", sizeMB, "mb", 0.2)
		sample(core.CategoryIngestion, variant.Name+"_insert_rate", rate, "rows/sec", 0.2)
	}

	c.logger.Println("开始索引测试")
	improvement, err := c.benchmarkIndexing(ctx, db)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIndexing, "index_improvement_ratio", improvement, "x", 1)

	c.logger.Println("开始安全开销测试")
	overhead, err := c.benchmarkSecurity(ctx, db)
	if err != nil {
		return nil, err
	}
	sample(core.CategorySecurity, "security_latency_overhead_percent", overhead, "percent", 1)

	return samples, nil
}

const postgresBenchTable = "bench_readings"

func (c *postgresCollector) recreateTable(ctx context.Context, db *sql.DB, table string, unlogged bool, options string) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return errors.Wrap(err, "删除旧测试表失败")
	}

	kind := "TABLE"
	if unlogged {
		kind = "UNLOGGED TABLE"
	}
	create := fmt.Sprintf(
		"CREATE %s %s (device_id INT NOT NULL, ts TIMESTAMPTZ NOT NULL, heart_rate INT, spo2 INT, temperature DOUBLE PRECISION) %s",
		kind, table, options)
	if _, err := db.ExecContext(ctx, create); err != nil {
		return errors.Wrap(err, "创建测试表失败")
	}
	return nil
}

// insertRows 按批写入合成的健康传感器数据，返回行每秒
func (c *postgresCollector) insertRows(ctx context.Context, db *sql.DB, table string, numRows int) (float64, error) {
	rng := rand.New(rand.NewSource(42))
	base := time.Now().Add(-24 * time.Hour)

	start := time.Now()
	for offset := 0; offset < numRows; offset += c.config.BatchSize {
		batch := c.config.BatchSize
		if offset+batch > numRows {
			batch = numRows - offset
		}

		b := &strings.Builder{}
		b.WriteString("INSERT INTO " + table + " (device_id, ts, heart_rate, spo2, temperature) VALUES ")
		args := make([]interface{}, 0, batch*5)
		for i := 0; i < batch; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			n := i * 5
			fmt.Fprintf(b, "($%d,$%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4, n+5)
			args = append(args,
				rng.Intn(500),
				base.Add(time.Duration(offset+i)*time.Second),
				60+rng.Intn(60),
				90+rng.Intn(10),
				36+rng.Float64()*2)
		}

		if _, err := db.ExecContext(ctx, b.String(), args...); err != nil {
			return 0, errors.Wrap(err, "批量插入失败")
		}
	}
	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		return 0, nil
	}
	return float64(numRows) / elapsed, nil
}

func (c *postgresCollector) benchmarkIngestion(ctx context.Context, db *sql.DB) (float64, error) {
	if err := c.recreateTable(ctx, db, postgresBenchTable, false, ""); err != nil {
		return 0, err
	}
	return c.insertRows(ctx, db, postgresBenchTable, c.config.NumRows)
}

var postgresQueryProbes = []string{
	"SELECT avg(heart_rate) FROM " + postgresBenchTable + " WHERE device_id = $1",
	"SELECT count(*) FROM " + postgresBenchTable + " WHERE ts > now() - interval '1 hour'",
	"SELECT device_id, max(temperature) FROM " + postgresBenchTable + " GROUP BY device_id",
}

func (c *postgresCollector) benchmarkQueries(ctx context.Context, db *sql.DB) (avg, p95 float64, err error) {
	latencies := make([]float64, 0, c.config.QueryRounds*len(postgresQueryProbes))
	for round := 0; round < c.config.QueryRounds; round++ {
		for _, query := range postgresQueryProbes {
			var args []interface{}
			if strings.Contains(query, "$1") {
				args = append(args, round%500)
			}

			start := time.Now()
			rows, err := db.QueryContext(ctx, query, args...)
			if err != nil {
				return 0, 0, errors.Wrap(err, "执行查询探测失败")
			}
			for rows.Next() {
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return 0, 0, errors.Wrap(err, "读取查询结果失败")
			}
			rows.Close()
			latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
		}
	}
	return mean(latencies), percentile(latencies, 0.95), nil
}

func (c *postgresCollector) measureStorage(ctx context.Context, db *sql.DB) (tableMB, indexMB float64, err error) {
	var tableBytes, indexBytes int64
	err = db.QueryRowContext(ctx,
		"SELECT pg_relation_size($1), pg_indexes_size($1)", postgresBenchTable).
		Scan(&tableBytes, &indexBytes)
	if err != nil {
		return 0, 0, errors.Wrap(err, "查询表大小失败")
	}
	const mb = 1024 * 1024
	return float64(tableBytes) / mb, float64(indexBytes) / mb, nil
}

// benchmarkVariant 在一个存储配置变体上重复同样的测量过程
func (c *postgresCollector) benchmarkVariant(ctx context.Context, db *sql.DB, variant StorageVariant) (rate, sizeMB float64, err error) {
	c.logger.Printf("测试存储变体%s", variant.Name)

	numRows := c.config.NumRows / 10
	if err := c.recreateTable(ctx, db, variant.Table, variant.Name == "unlogged", variant.Options); err != nil {
		return 0, 0, err
	}

	rate, err = c.insertRows(ctx, db, variant.Table, numRows)
	if err != nil {
		return 0, 0, err
	}

	var tableBytes int64
	err = db.QueryRowContext(ctx, "SELECT pg_relation_size($1)", variant.Table).Scan(&tableBytes)
	if err != nil {
		return 0, 0, errors.Wrap(err, "查询变体表大小失败")
	}
	return rate, float64(tableBytes) / 1024 / 1024, nil
}

func (c *postgresCollector) benchmarkIndexing(ctx context.Context, db *sql.DB) (float64, error) {
	probe := "SELECT avg(heart_rate) FROM " + postgresBenchTable + " WHERE device_id = $1"

	before, err := c.timeQuery(ctx, db, probe, 7)
	if err != nil {
		return 0, err
	}

	_, err = db.ExecContext(ctx,
		"CREATE INDEX IF NOT EXISTS bench_readings_device_idx ON "+postgresBenchTable+" (device_id)")
	if err != nil {
		return 0, errors.Wrap(err, "创建索引失败")
	}

	after, err := c.timeQuery(ctx, db, probe, 7)
	if err != nil {
		return 0, err
	}

	if after == 0 {
		return 1, nil
	}
	return before / after, nil
}

// benchmarkSecurity 开启行级安全前后同一查询的延迟差，按百分比给出
func (c *postgresCollector) benchmarkSecurity(ctx context.Context, db *sql.DB) (float64, error) {
	probe := "SELECT count(*) FROM " + postgresBenchTable + " WHERE device_id = $1"

	baseline, err := c.timeQuery(ctx, db, probe, 7)
	if err != nil {
		return 0, err
	}

	statements := []string{
		"ALTER TABLE " + postgresBenchTable + " ENABLE ROW LEVEL SECURITY",
		"DROP POLICY IF EXISTS bench_device_policy ON " + postgresBenchTable,
		"CREATE POLICY bench_device_policy ON " + postgresBenchTable + " USING (device_id >= 0)",
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return 0, errors.Wrap(err, "配置行级安全失败")
		}
	}

	secured, err := c.timeQuery(ctx, db, probe, 7)
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, "ALTER TABLE "+postgresBenchTable+" DISABLE ROW LEVEL SECURITY"); err != nil {
		return 0, errors.Wrap(err, "关闭行级安全失败")
	}

	if baseline == 0 {
		return 0, nil
	}
	return (secured - baseline) / baseline * 100, nil
}

func (c *postgresCollector) timeQuery(ctx context.Context, db *sql.DB, query string, rounds int) (float64, error) {
	latencies := make([]float64, 0, rounds)
	for i := 0; i < rounds; i++ {
		start := time.Now()
		var ignored sql.NullFloat64
		if err := db.QueryRowContext(ctx, query, i%500).Scan(&ignored); err != nil {
			return 0, errors.Wrap(err, "执行计时查询失败")
		}
		latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
	}
	return mean(latencies), nil
}

package collector

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	DefaultMongoBatchSize   = 1000
	DefaultMongoNumDocs     = 100000
	DefaultMongoQueryRounds = 20
)

const mongoBenchCollection = "bench_readings"

// MongoDocumentVariants 文档结构变体的固定清单：
// 扁平文档与嵌套文档各测一遍写入与占用
var MongoDocumentVariants = []StorageVariant{
	{Name: "flat", Table: "bench_readings_flat"},
	{Name: "nested", Table: "bench_readings_nested"},
}

type MongoConfig struct {
	URI         string
	Database    string
	BatchSize   int
	NumDocs     int
	QueryRounds int
}

func (c *MongoConfig) Complete() error {
	if c.URI == "" {
		return fmt.Errorf("MongoDB的URI不能为空")
	}
	if c.Database == "" {
		c.Database = "benchmark"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultMongoBatchSize
	}
	if c.NumDocs <= 0 {
		c.NumDocs = DefaultMongoNumDocs
	}
	if c.QueryRounds <= 0 {
		c.QueryRounds = DefaultMongoQueryRounds
	}
	return nil
}

func NewMongo(config *MongoConfig) (Collector, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}
	return &mongoCollector{
		config: config,
		logger: log.New(os.Stdout, "mongodb: ", log.LstdFlags|log.Lmsgprefix),
	}, nil
}

type mongoCollector struct {
	config *MongoConfig
	logger *log.Logger
}

func (c *mongoCollector) Name() string {
	return "MongoDB"
}

func (c *mongoCollector) Collect(ctx context.Context, runID core.RunID) ([]core.MetricSample, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.config.URI))
	if err != nil {
		return nil, errors.Wrap(err, "连接MongoDB失败")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "ping MongoDB失败")
	}

	db := client.Database(c.config.Database)

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
	rate, err := c.benchmarkInserts(ctx, db.Collection(mongoBenchCollection), c.config.NumDocs, flatDocument)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIngestion, "insert_rate", rate, "docs/sec", 1)

	for _, variant := range MongoDocumentVariants {
		maker := flatDocument
		if variant.Name == "nested" {
			maker = nestedDocument
		}
		variantRate, err := c.benchmarkInserts(ctx, db.Collection(variant.Table), c.config.NumDocs/10, maker)
		if err != nil {
			return nil, err
		}
		sizeMB, _, err := c.collectionStats(ctx, db, variant.Table)
		if err != nil {
			return nil, err
		}
		sample(core.CategoryIngestion, variant.Name+"_insert_rate", variantRate, "docs/sec", 0.2)
		sample(core.CategoryStorage, variant.Name+"_storage_size_mb", sizeMB, "mb", 0.2)
	}

	c.logger.Println("开始查询测试")
	avg, p95, err := c.benchmarkQueries(ctx, db.Collection(mongoBenchCollection))
	if err != nil {
		return nil, err
	}
	sample(core.CategoryQuery, "query_latency_avg_ms", avg, "ms", 1)
	sample(core.CategoryQuery, "query_latency_p95_ms", p95, "ms", 0.5)

	c.logger.Println("开始存储测试")
	storageMB, indexMB, err := c.collectionStats(ctx, db, mongoBenchCollection)
	if err != nil {
		return nil, err
	}
	sample(core.CategoryStorage, "storage_size_mb", storageMB, "mb", 1)
	sample(core.CategoryStorage, "index_size_mb", indexMB, "mb", 0.5)

	c.logger.Println("开始索引测试")
	improvement, err := c.benchmarkIndexing(ctx, db.Collection(mongoBenchCollection))
	if err != nil {
		return nil, err
	}
	sample(core.CategoryIndexing, "index_improvement_ratio", improvement, "x", 1)

	c.logger.Println("开始认证开销测试")
	authTime, err := c.benchmarkAuth(ctx)
	if err != nil {
		return nil, err
	}
	sample(core.CategorySecurity, "auth_time_ms", authTime, "ms", 1)

	return samples, nil
}

func flatDocument(rng *rand.Rand, ts time.Time) interface{} {
	return bson.M{
		"device_id":   rng.Intn(500),
		"ts":          ts,
		"heart_rate":  60 + rng.Intn(60),
		"spo2":        90 + rng.Intn(10),
		"temperature": 36 + rng.Float64()*2,
	}
}

func nestedDocument(rng *rand.Rand, ts time.Time) interface{} {
	return bson.M{
		"device": bson.M{"id": rng.Intn(500), "kind": "wearable"},
		"ts":     ts,
		"vitals": bson.M{
			"heart_rate":  60 + rng.Intn(60),
			"spo2":        90 + rng.Intn(10),
			"temperature": 36 + rng.Float64()*2,
		},
	}
}

func (c *mongoCollector) benchmarkInserts(ctx context.Context, coll *mongo.Collection, numDocs int, maker func(*rand.Rand, time.Time) interface{}) (float64, error) {
	if err := coll.Drop(ctx); err != nil {
		return 0, errors.Wrap(err, "删除旧测试集合失败")
	}

	rng := rand.New(rand.NewSource(42))
	base := time.Now().Add(-24 * time.Hour)

	start := time.Now()
	for offset := 0; offset < numDocs; offset += c.config.BatchSize {
		batch := c.config.BatchSize
		if offset+batch > numDocs {
			batch = numDocs - offset
		}
		docs := make([]interface{}, batch)
		for i := 0; i < batch; i++ {
			docs[i] = maker(rng, base.Add(time.Duration(offset+i)*time.Second))
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return 0, errors.Wrap(err, "批量插入文档失败")
		}
	}

	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		return 0, nil
	}
	return float64(numDocs) / elapsed, nil
}

var mongoQueryProbes = []bson.M{
	{"device_id": 7},
	{"heart_rate": bson.M{"$gt": 100}},
}

func (c *mongoCollector) benchmarkQueries(ctx context.Context, coll *mongo.Collection) (avg, p95 float64, err error) {
	latencies := make([]float64, 0, c.config.QueryRounds*len(mongoQueryProbes))
	for round := 0; round < c.config.QueryRounds; round++ {
		for _, filter := range mongoQueryProbes {
			elapsed, err := c.timeFind(ctx, coll, filter)
			if err != nil {
				return 0, 0, err
			}
			latencies = append(latencies, elapsed)
		}
	}
	return mean(latencies), percentile(latencies, 0.95), nil
}

func (c *mongoCollector) collectionStats(ctx context.Context, db *mongo.Database, collection string) (storageMB, indexMB float64, err error) {
	var stats struct {
		StorageSize    float64 `bson:"storageSize"`
		TotalIndexSize float64 `bson:"totalIndexSize"`
	}
	err = db.RunCommand(ctx, bson.D{{Key: "collStats", Value: collection}}).Decode(&stats)
	if err != nil {
		return 0, 0, errors.Wrap(err, "执行collStats失败")
	}
	const mb = 1024 * 1024
	return stats.StorageSize / mb, stats.TotalIndexSize / mb, nil
}

func (c *mongoCollector) benchmarkIndexing(ctx context.Context, coll *mongo.Collection) (float64, error) {
	filter := bson.M{"device_id": 7}

	before, err := c.timeFindRounds(ctx, coll, filter, 7)
	if err != nil {
		return 0, err
	}

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "device_id", Value: 1}},
	})
	if err != nil {
		return 0, errors.Wrap(err, "创建索引失败")
	}

	after, err := c.timeFindRounds(ctx, coll, filter, 7)
	if err != nil {
		return 0, err
	}

	if after == 0 {
		return 1, nil
	}
	return before / after, nil
}

// benchmarkAuth 反复新建连接测量SCRAM认证握手耗时
func (c *mongoCollector) benchmarkAuth(ctx context.Context) (float64, error) {
	const rounds = 5
	latencies := make([]float64, 0, rounds)
	for i := 0; i < rounds; i++ {
		start := time.Now()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.config.URI))
		if err != nil {
			return 0, errors.Wrap(err, "建立认证连接失败")
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return 0, errors.Wrap(err, "认证连接ping失败")
		}
		latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
		_ = client.Disconnect(ctx)
	}
	return mean(latencies), nil
}

func (c *mongoCollector) timeFindRounds(ctx context.Context, coll *mongo.Collection, filter bson.M, rounds int) (float64, error) {
	latencies := make([]float64, 0, rounds)
	for i := 0; i < rounds; i++ {
		elapsed, err := c.timeFind(ctx, coll, filter)
		if err != nil {
			return 0, err
		}
		latencies = append(latencies, elapsed)
	}
	return mean(latencies), nil
}

func (c *mongoCollector) timeFind(ctx context.Context, coll *mongo.Collection, filter bson.M) (float64, error) {
	start := time.Now()
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "执行查询失败")
	}
	for cursor.Next(ctx) {
	}
	if err := cursor.Err(); err != nil {
		_ = cursor.Close(ctx)
		return 0, errors.Wrap(err, "读取查询结果失败")
	}
	_ = cursor.Close(ctx)
	return float64(time.Since(start).Microseconds()) / 1000, nil
}

package collector

import (
	"context"
	"log"
	"os"

	"github.com/packagewjx/iotdb-bench/pkg/core"
)

// Collector 针对单个数据库执行全部探测并产出指标样本。
// 一次Collect对应一次运行（RunID），产出的样本不可再修改。
type Collector interface {
	Name() string
	Collect(ctx context.Context, runID core.RunID) ([]core.MetricSample, error)
}

// StorageVariant 存储配置变体。同一套测量过程在每个变体上各跑一遍，
// 以得到可比的结果。表名是每个变体自带的固定标识符，
// 不允许在运行时拼接生成。
type StorageVariant struct {
	Name    string // 变体名，作为指标名前缀
	Table   string // 该变体使用的表（或集合）名
	Options string // 建表时附加的存储选项，可为空
}

// CollectAll 依次运行所有收集器并汇总样本。
// 某个收集器失败只影响它自己的数据库：记录错误后继续其余收集器，
// 缺失的类别由评分阶段的缺失策略处理，不会被算成0分。
func CollectAll(ctx context.Context, runID core.RunID, collectors []Collector) []core.MetricSample {
	logger := log.New(os.Stdout, "collector: ", log.LstdFlags|log.Lmsgprefix)

	samples := make([]core.MetricSample, 0)
	for _, c := range collectors {
		logger.Printf("开始收集%s的指标", c.Name())
		result, err := c.Collect(ctx, runID)
		if err != nil {
			logger.Printf("收集%s的指标失败：%v，跳过该数据库", c.Name(), err)
			continue
		}
		logger.Printf("收集%s完成，共%d条样本", c.Name(), len(result))
		samples = append(samples, result...)
	}
	return samples
}

// percentile 返回延迟序列的p分位数（0<p<1），不修改输入。空输入返回0。
func percentile(latencies []float64, p float64) float64 {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := float64(0)
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

package compare

import (
	"github.com/packagewjx/iotdb-bench/pkg/core"
)

// Stats 计算一次运行内每个指标在所有数据库上的最小值、最大值与方向。
// 不变式：Min <= Max。
func Stats(samples []core.MetricSample) map[string]core.MetricStats {
	result := make(map[string]core.MetricStats)
	for _, sample := range samples {
		stats, ok := result[sample.Metric]
		if !ok {
			result[sample.Metric] = core.MetricStats{
				Min:            sample.Value,
				Max:            sample.Value,
				HigherIsBetter: HigherIsBetter(sample.Metric),
			}
			continue
		}
		if sample.Value < stats.Min {
			stats.Min = sample.Value
		}
		if sample.Value > stats.Max {
			stats.Max = sample.Value
		}
		result[sample.Metric] = stats
	}
	return result
}

// Normalize 将每个样本的原始值按指标组的最大最小值重缩放到[0,100]。
// Max==Min时该组所有样本记为100，不会出现除零。纯函数，输出顺序与输入一致。
func Normalize(samples []core.MetricSample) []core.NormalizedScore {
	stats := Stats(samples)

	result := make([]core.NormalizedScore, 0, len(samples))
	for _, sample := range samples {
		s := stats[sample.Metric]

		var score float64
		if s.Max == s.Min {
			score = 100
		} else if s.HigherIsBetter {
			score = (sample.Value - s.Min) / (s.Max - s.Min) * 100
		} else {
			score = (s.Max - sample.Value) / (s.Max - s.Min) * 100
		}

		result = append(result, core.NormalizedScore{
			Database: sample.Database,
			Category: sample.Category,
			Metric:   sample.Metric,
			Score:    score,
		})
	}
	return result
}

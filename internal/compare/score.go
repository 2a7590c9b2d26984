package compare

import (
	"sort"

	"github.com/packagewjx/iotdb-bench/pkg/core"
)

// Score 计算各数据库的加权总分并排名。
//
// 缺失类别的策略：某数据库缺失某类别的得分时，将该项同时从分子与权重
// 分母中剔除，以剩余权重之和重新归一化，而不是按0计入。这样缺失数据
// 不会被误读成0分的真实成绩。
//
// 排名使用标准竞争排名：总分相同的数据库并列同一名次，后续名次跳过
// （1,2,2,4）。总分相同时按数据库名称升序输出，保证结果确定。
func Score(categoryScores []core.CategoryScore) []core.FinalScore {
	byDatabase := make(map[string]map[core.Category]float64)
	for _, cs := range categoryScores {
		m, ok := byDatabase[cs.Database]
		if !ok {
			m = make(map[core.Category]float64)
			byDatabase[cs.Database] = m
		}
		m[cs.Category] = cs.Score
	}

	result := make([]core.FinalScore, 0, len(byDatabase))
	for database, scores := range byDatabase {
		// 按固定类别顺序累加，保证同样的类别得分得到逐位相同的总分，
		// 并列判断才能严格成立
		weightedSum := float64(0)
		weightSum := float64(0)
		for _, category := range core.Categories {
			score, ok := scores[category]
			if !ok {
				continue
			}
			w := core.CategoryWeights[category]
			weightedSum += score * w
			weightSum += w
		}

		total := float64(0)
		if len(scores) == len(core.Categories) {
			// 五个类别齐全时权重之和为1，不再做除法
			total = weightedSum
		} else if weightSum > 0 {
			total = weightedSum / weightSum
		}

		result = append(result, core.FinalScore{
			Database:       database,
			CategoryScores: scores,
			TotalScore:     total,
			Tier:           core.TierOf(total),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalScore != result[j].TotalScore {
			return result[i].TotalScore > result[j].TotalScore
		}
		return result[i].Database < result[j].Database
	})

	for i := range result {
		if i > 0 && result[i].TotalScore == result[i-1].TotalScore {
			result[i].Ranking = result[i-1].Ranking
		} else {
			result[i].Ranking = i + 1
		}
	}

	return result
}

// Result 一次运行的完整比较结果，各层数据均可用于报告输出
type Result struct {
	RunID          core.RunID
	Samples        []core.MetricSample
	Stats          map[string]core.MetricStats
	Normalized     []core.NormalizedScore
	CategoryScores []core.CategoryScore
	FinalScores    []core.FinalScore
}

// Run 对一次运行的完整样本快照执行比较计算。
// 纯函数，任何时候用同一快照重算都会得到相同结果。
func Run(runID core.RunID, samples []core.MetricSample) *Result {
	normalized := Normalize(samples)
	categoryScores := Aggregate(normalized)
	return &Result{
		RunID:          runID,
		Samples:        samples,
		Stats:          Stats(samples),
		Normalized:     normalized,
		CategoryScores: categoryScores,
		FinalScores:    Score(categoryScores),
	}
}

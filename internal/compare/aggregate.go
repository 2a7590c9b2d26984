package compare

import (
	"sort"

	"github.com/packagewjx/iotdb-bench/pkg/core"
)

// Aggregate 按(数据库,类别)对归一化得分求算术平均。
// 某数据库在某类别没有任何样本时不产生记录，绝不会以0充数，
// 缺失的类别由评分阶段按既定策略处理。
func Aggregate(scores []core.NormalizedScore) []core.CategoryScore {
	type key struct {
		database string
		category core.Category
	}
	sum := make(map[key]float64)
	count := make(map[key]int)

	for _, score := range scores {
		k := key{database: score.Database, category: score.Category}
		sum[k] += score.Score
		count[k]++
	}

	result := make([]core.CategoryScore, 0, len(sum))
	for k, s := range sum {
		result = append(result, core.CategoryScore{
			Database: k.database,
			Category: k.category,
			Score:    s / float64(count[k]),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Database != result[j].Database {
			return result[i].Database < result[j].Database
		}
		return categoryOrder(result[i].Category) < categoryOrder(result[j].Category)
	})

	return result
}

func categoryOrder(c core.Category) int {
	for i, category := range core.Categories {
		if category == c {
			return i
		}
	}
	return len(core.Categories)
}

package report

import (
	"sort"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/pkg/core"
)

// Award 前三名的奖项标签
var Award = map[int]string{
	1: "Champion",
	2: "Runner-up",
	3: "Third place",
}

type RankingRow struct {
	Rank       int       `json:"rank"`
	Database   string    `json:"database"`
	TotalScore float64   `json:"totalScore"`
	Tier       core.Tier `json:"tier"`
	Award      string    `json:"award,omitempty"` // 仅前三名有
}

type CategoryRow struct {
	Category     core.Category `json:"category"`
	Database     string        `json:"database"`
	AverageScore float64       `json:"averageScore"`
	CategoryRank int           `json:"categoryRank"`
}

type DetailRow struct {
	Database        string        `json:"database"`
	Category        core.Category `json:"category"`
	Metric          string        `json:"metric"`
	Value           float64       `json:"value"`
	Unit            string        `json:"unit"`
	NormalizedScore float64       `json:"normalizedScore"`
	WeightedScore   float64       `json:"weightedScore"` // 归一化得分×该行权重
	Notes           string        `json:"notes,omitempty"`
}

type Report struct {
	RunID               core.RunID    `json:"runId"`
	Ranking             []RankingRow  `json:"ranking"`
	CategoryPerformance []CategoryRow `json:"categoryPerformance"`
	CategoryWinners     []CategoryRow `json:"categoryWinners"`
	Details             []DetailRow   `json:"details"`
}

// Build 由一次运行的比较结果生成报告的三张表。
// 类别内排名与总排名使用同一套规则：竞争排名，同分并列，按名称升序定序。
func Build(result *compare.Result) *Report {
	r := &Report{RunID: result.RunID}

	for _, fs := range result.FinalScores {
		r.Ranking = append(r.Ranking, RankingRow{
			Rank:       fs.Ranking,
			Database:   fs.Database,
			TotalScore: fs.TotalScore,
			Tier:       fs.Tier,
			Award:      Award[fs.Ranking],
		})
	}

	r.CategoryPerformance = categoryPerformance(result.CategoryScores)
	for _, row := range r.CategoryPerformance {
		if row.CategoryRank == 1 {
			r.CategoryWinners = append(r.CategoryWinners, row)
		}
	}

	r.Details = details(result)

	return r
}

func categoryPerformance(scores []core.CategoryScore) []CategoryRow {
	byCategory := make(map[core.Category][]core.CategoryScore)
	for _, cs := range scores {
		byCategory[cs.Category] = append(byCategory[cs.Category], cs)
	}

	result := make([]CategoryRow, 0, len(scores))
	for _, category := range core.Categories {
		group := byCategory[category]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Score != group[j].Score {
				return group[i].Score > group[j].Score
			}
			return group[i].Database < group[j].Database
		})

		rank := 0
		for i, cs := range group {
			if i == 0 || cs.Score != group[i-1].Score {
				rank = i + 1
			}
			result = append(result, CategoryRow{
				Category:     category,
				Database:     cs.Database,
				AverageScore: cs.Score,
				CategoryRank: rank,
			})
		}
	}
	return result
}

func details(result *compare.Result) []DetailRow {
	scoreOf := make(map[[3]string]float64, len(result.Normalized))
	for _, ns := range result.Normalized {
		scoreOf[[3]string{ns.Database, string(ns.Category), ns.Metric}] = ns.Score
	}

	rows := make([]DetailRow, 0, len(result.Samples))
	for _, sample := range result.Samples {
		score := scoreOf[[3]string{sample.Database, string(sample.Category), sample.Metric}]
		rows = append(rows, DetailRow{
			Database:        sample.Database,
			Category:        sample.Category,
			Metric:          sample.Metric,
			Value:           sample.Value,
			Unit:            sample.Unit,
			NormalizedScore: score,
			WeightedScore:   score * sample.Weight,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Database != rows[j].Database {
			return rows[i].Database < rows[j].Database
		}
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Metric < rows[j].Metric
	})

	return rows
}

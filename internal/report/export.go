package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// 导出的分数保留两位小数
const scorePrecision = 2

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', scorePrecision, 64)
}

// WriteRankingCSV 导出排名表，字段顺序固定：rank,database,total_score,tier,award
func WriteRankingCSV(out io.Writer, rows []RankingRow) error {
	writer := csv.NewWriter(out)
	_ = writer.Write([]string{"rank", "database", "total_score", "tier", "award"})
	for _, row := range rows {
		err := writer.Write([]string{
			strconv.Itoa(row.Rank),
			row.Database,
			formatScore(row.TotalScore),
			string(row.Tier),
			row.Award,
		})
		if err != nil {
			return errors.Wrap(err, "写入排名数据错误")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "导出排名表失败")
}

// WriteCategoryCSV 导出类别表现表，字段顺序固定：category,database,average_score,category_rank
func WriteCategoryCSV(out io.Writer, rows []CategoryRow) error {
	writer := csv.NewWriter(out)
	_ = writer.Write([]string{"category", "database", "average_score", "category_rank"})
	for _, row := range rows {
		err := writer.Write([]string{
			string(row.Category),
			row.Database,
			formatScore(row.AverageScore),
			strconv.Itoa(row.CategoryRank),
		})
		if err != nil {
			return errors.Wrap(err, "写入类别数据错误")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "导出类别表失败")
}

// WriteDetailCSV 导出明细表，
// 字段顺序固定：database,category,metric,value,unit,normalized_score,weighted_score,notes
func WriteDetailCSV(out io.Writer, rows []DetailRow) error {
	writer := csv.NewWriter(out)
	_ = writer.Write([]string{"database", "category", "metric", "value", "unit",
		"normalized_score", "weighted_score", "notes"})
	for _, row := range rows {
		err := writer.Write([]string{
			row.Database,
			string(row.Category),
			row.Metric,
			strconv.FormatFloat(row.Value, 'f', -1, 64),
			row.Unit,
			formatScore(row.NormalizedScore),
			formatScore(row.WeightedScore),
			row.Notes,
		})
		if err != nil {
			return errors.Wrap(err, "写入明细数据错误")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "导出明细表失败")
}

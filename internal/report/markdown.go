package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// WriteMarkdown 输出完整的对比报告（markdown格式），
// 包括总排名、各类别表现与指标明细
func WriteMarkdown(out io.Writer, r *Report) error {
	b := &strings.Builder{}

	b.WriteString("# Database Benchmark Comparison Report\n\n")
	fmt.Fprintf(b, "**Run ID:** %s\n\n", r.RunID)

	if len(r.Ranking) > 0 {
		b.WriteString("## Final Ranking\n\n")
		b.WriteString("| Rank | Database | Total Score | Tier | Award |\n")
		b.WriteString("|------|----------|-------------|------|-------|\n")
		for _, row := range r.Ranking {
			fmt.Fprintf(b, "| %d | %s | %s | %s | %s |\n",
				row.Rank, row.Database, formatScore(row.TotalScore), row.Tier, row.Award)
		}
		b.WriteString("\n")
	}

	if len(r.CategoryWinners) > 0 {
		b.WriteString("## Category Winners\n\n")
		b.WriteString("| Category | Database | Average Score |\n")
		b.WriteString("|----------|----------|---------------|\n")
		for _, row := range r.CategoryWinners {
			fmt.Fprintf(b, "| %s | %s | %s |\n",
				row.Category, row.Database, formatScore(row.AverageScore))
		}
		b.WriteString("\n")
	}

	if len(r.CategoryPerformance) > 0 {
		b.WriteString("## Category Performance\n\n")
		b.WriteString("| Category | Database | Average Score | Rank |\n")
		b.WriteString("|----------|----------|---------------|------|\n")
		for _, row := range r.CategoryPerformance {
			fmt.Fprintf(b, "| %s | %s | %s | %d |\n",
				row.Category, row.Database, formatScore(row.AverageScore), row.CategoryRank)
		}
		b.WriteString("\n")
	}

	if len(r.Details) > 0 {
		b.WriteString("## Metric Details\n\n")
		b.WriteString("| Database | Category | Metric | Value | Unit | Normalized | Weighted |\n")
		b.WriteString("|----------|----------|--------|-------|------|------------|----------|\n")
		for _, row := range r.Details {
			fmt.Fprintf(b, "| %s | %s | %s | %g | %s | %s | %s |\n",
				row.Database, row.Category, row.Metric, row.Value, row.Unit,
				formatScore(row.NormalizedScore), formatScore(row.WeightedScore))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(out, b.String())
	return errors.Wrap(err, "写出markdown报告失败")
}

// WriteExecutiveSummary 输出单页的文本摘要：冠军、前三名与各类别最佳
func WriteExecutiveSummary(out io.Writer, r *Report) error {
	b := &strings.Builder{}
	line := strings.Repeat("=", 60)

	b.WriteString(line + "\n")
	b.WriteString("DATABASE BENCHMARK - EXECUTIVE SUMMARY\n")
	b.WriteString(line + "\n\n")
	fmt.Fprintf(b, "Run ID: %s\n\n", r.RunID)

	if len(r.Ranking) > 0 {
		winner := r.Ranking[0]
		b.WriteString("OVERALL WINNER\n")
		fmt.Fprintf(b, "  %s (score %s/100, tier %s)\n\n",
			winner.Database, formatScore(winner.TotalScore), winner.Tier)

		b.WriteString("TOP RANKING\n")
		for _, row := range r.Ranking {
			if row.Rank > 3 {
				break
			}
			fmt.Fprintf(b, "  %d. %s: %s/100 (%s)\n",
				row.Rank, row.Database, formatScore(row.TotalScore), row.Award)
		}
		b.WriteString("\n")
	}

	if len(r.CategoryWinners) > 0 {
		b.WriteString("BEST IN CATEGORY\n")
		for _, row := range r.CategoryWinners {
			fmt.Fprintf(b, "  %s: %s (%s)\n",
				row.Category, row.Database, formatScore(row.AverageScore))
		}
		b.WriteString("\n")
	}

	b.WriteString(line + "\n")

	_, err := io.WriteString(out, b.String())
	return errors.Wrap(err, "写出摘要失败")
}

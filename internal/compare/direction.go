package compare

import "strings"

// HigherIsBetter 根据指标名称判断数值是否越大越好。
// 按顺序做区分大小写的子串匹配，第一条命中的规则生效。
// 名称同时命中多条规则时（如latency_rate）以规则顺序为准，
// 这是沿用原有评分口径的已知局限，不要调整顺序。
func HigherIsBetter(metric string) bool {
	switch {
	case strings.Contains(metric, "latency") || strings.Contains(metric, "time"):
		return false
	case strings.Contains(metric, "rate") || strings.Contains(metric, "throughput"):
		return true
	case strings.Contains(metric, "efficiency"):
		return true
	case strings.Contains(metric, "score"):
		return true
	case strings.Contains(metric, "size"):
		return false
	default:
		return true
	}
}

package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHigherIsBetter(t *testing.T) {
	assert.False(t, HigherIsBetter("query_latency_avg_ms"))
	assert.False(t, HigherIsBetter("total_time"))
	assert.True(t, HigherIsBetter("insert_rate"))
	assert.True(t, HigherIsBetter("write_throughput"))
	assert.True(t, HigherIsBetter("storage_efficiency"))
	assert.True(t, HigherIsBetter("security_score"))
	assert.False(t, HigherIsBetter("table_size_mb"))

	/*
		默认分支：未命中任何关键词的指标视为越大越好
	*/
	assert.True(t, HigherIsBetter("index_improvement_ratio"))

	/*
		多关键词命中时以规则顺序为准。latency_rate同时含latency与rate，
		latency规则在前，因此判为越小越好。这是既有口径的局限，测试在此
		固定该行为，防止被当成bug修掉。
	*/
	assert.False(t, HigherIsBetter("latency_rate"))
	assert.False(t, HigherIsBetter("time_efficiency"))
	// size_score同时含score与size，score规则在前，判为越大越好
	assert.True(t, HigherIsBetter("size_score"))

	/*
		匹配区分大小写，Latency不会命中latency规则
	*/
	assert.True(t, HigherIsBetter("Latency"))
}

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/packagewjx/iotdb-bench/pkg/server"
	"github.com/stretchr/testify/assert"
)

func TestApiClient(t *testing.T) {
	scores := []core.FinalScore{
		{Database: "PostgreSQL", TotalScore: 90, Ranking: 1, Tier: core.TierExcellent},
		{Database: "InfluxDB", TotalScore: 70, Ranking: 2, Tier: core.TierGood},
	}
	recomputed := false

	ts := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/runs":
			_ = json.NewEncoder(writer).Encode([]core.RunID{"run_1", "run_2"})
		case "/runs/run_2/ranking":
			_ = json.NewEncoder(writer).Encode(scores)
		case "/runs/run_2/recompute":
			assert.Equal(t, http.MethodPost, request.Method)
			recomputed = true
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := NewApiClient(ts.URL)

	runIDs, err := c.QueryRunIDs()
	assert.NoError(t, err)
	assert.Equal(t, []core.RunID{"run_1", "run_2"}, runIDs)

	ranking, err := c.QueryRanking("run_2")
	assert.NoError(t, err)
	assert.Equal(t, scores, ranking)

	assert.NoError(t, c.Recompute("run_2"))
	assert.True(t, recomputed)

	/* 不存在的运行 */
	_, err = c.QueryRanking("run_404")
	assert.Equal(t, server.ErrRunNotFound, err)
}

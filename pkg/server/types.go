package server

import (
	"fmt"

	"github.com/packagewjx/iotdb-bench/pkg/core"
)

var ErrRunNotFound = fmt.Errorf("不存在本次运行")

// LatestRunID 在接口中代表仓库里最新的一次运行
const LatestRunID = core.RunID("latest")

// API 结果仓库服务器对外提供的接口
type API interface {
	// QueryRunIDs 列出仓库中全部运行的RunID
	QueryRunIDs() ([]core.RunID, error)

	// QueryRanking 查询一次运行已保存的总分排名，按名次与数据库名升序
	QueryRanking(runID core.RunID) ([]core.FinalScore, error)

	// Recompute 触发一次运行的重算。重算异步执行，完成后整体替换旧结果
	Recompute(runID core.RunID) error
}

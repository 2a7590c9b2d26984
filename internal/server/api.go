package server

import (
	"github.com/packagewjx/iotdb-bench/pkg/core"
	apiserver "github.com/packagewjx/iotdb-bench/pkg/server"
)

var _ apiserver.API = &serverImpl{}

func (s *serverImpl) QueryRunIDs() ([]core.RunID, error) {
	return s.dao.QueryRunIDs()
}

func (s *serverImpl) QueryRanking(runID core.RunID) ([]core.FinalScore, error) {
	resolved, err := s.resolveRunID(string(runID))
	if err != nil {
		return nil, err
	}
	return s.dao.QueryFinalScores(resolved)
}

// Recompute 将RunID交给重算worker后立即返回，不等待重算完成
func (s *serverImpl) Recompute(runID core.RunID) error {
	resolved, err := s.resolveRunID(string(runID))
	if err != nil {
		return err
	}
	s.recomputeCh <- resolved
	return nil
}

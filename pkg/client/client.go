package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/packagewjx/iotdb-bench/pkg/server"
	"github.com/pkg/errors"
)

const defaultApiHostBaseUrl = "http://iotdb-bench.iotdb-bench:2000"

// NewApiClient 构造访问结果仓库服务器的客户端。baseUrl为空时使用集群内默认地址
func NewApiClient(baseUrl string) server.API {
	if baseUrl == "" {
		baseUrl = defaultApiHostBaseUrl
	}
	return &apiClient{baseUrl: baseUrl}
}

var _ server.API = &apiClient{}

type apiClient struct {
	baseUrl string
}

func (a *apiClient) QueryRunIDs() ([]core.RunID, error) {
	runIDs := make([]core.RunID, 0)
	err := a.getJSON(a.baseUrl+"/runs", &runIDs)
	return runIDs, err
}

func (a *apiClient) QueryRanking(runID core.RunID) ([]core.FinalScore, error) {
	scores := make([]core.FinalScore, 0)
	err := a.getJSON(fmt.Sprintf("%s/runs/%s/ranking", a.baseUrl, runID), &scores)
	return scores, err
}

func (a *apiClient) Recompute(runID core.RunID) error {
	response, err := http.Post(fmt.Sprintf("%s/runs/%s/recompute", a.baseUrl, runID), "", nil)
	if err != nil {
		return errors.Wrap(err, "请求时出现异常")
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode == http.StatusNotFound {
		return server.ErrRunNotFound
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("服务器返回%d", response.StatusCode)
	}
	return nil
}

func (a *apiClient) getJSON(url string, dest interface{}) error {
	response, err := http.Get(url)
	if err != nil {
		return errors.Wrap(err, "请求时出现异常")
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode == http.StatusNotFound {
		return server.ErrRunNotFound
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("服务器返回%d", response.StatusCode)
	}

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "读取时出现异常")
	}

	err = json.Unmarshal(body, dest)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("解析json异常，json为\n%s", string(body)))
	}
	return nil
}

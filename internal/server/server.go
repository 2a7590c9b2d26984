package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/internal/report"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
)

const (
	DefaultPort = 2000
)

type ServerConfig struct {
	Port     uint16 // 本服务器监听端口
	MysqlDSN string // 结果仓库的MySQL DSN。若为空则读取环境变量MYSQL_DSN
}

func (config ServerConfig) String() string {
	marshal, _ := json.Marshal(struct {
		Port uint16
	}{Port: config.Port})
	return string(marshal)
}

func (config *ServerConfig) Complete() error {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Port < 1024 {
		return fmt.Errorf("端口号应该在1024到65535之间，现在为%d", config.Port)
	}

	if config.MysqlDSN == "" {
		config.MysqlDSN = os.Getenv("MYSQL_DSN")
	}
	if config.MysqlDSN == "" {
		return fmt.Errorf("MysqlDSN不能为空")
	}

	return nil
}

type Server interface {
	Start() error
}

func NewServer(config *ServerConfig) (Server, error) {
	if err := config.Complete(); err != nil {
		return nil, err
	}

	dao, err := NewDao(config.MysqlDSN)
	if err != nil {
		return nil, err
	}

	return &serverImpl{
		config:      config,
		dao:         dao,
		logger:      log.New(os.Stdout, "bench server: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
		recomputeCh: make(chan core.RunID),
	}, nil
}

type serverImpl struct {
	config      *ServerConfig
	dao         Dao
	logger      *log.Logger
	recomputeCh chan core.RunID
}

func (s *serverImpl) Start() error {
	rootCtx, cancel := context.WithCancel(context.Background())

	s.logger.Printf("服务器启动。配置：%v\n", s.config)

	go s.recomputeWorker(rootCtx)

	server := s.buildServer()
	errCh := make(chan error)
	go s.serve(server, errCh)

	// 注册信号接收器
	termSigChan := make(chan os.Signal, 1)
	signal.Notify(termSigChan, syscall.SIGTERM, syscall.SIGINT)

	<-termSigChan
	err := server.Shutdown(rootCtx)
	if err != nil {
		cancel()
		return errors.Wrap(err, "关闭HTTP服务器失败")
	}
	cancel()

	// 等待HTTP服务器结束
	err = <-errCh
	if err != nil {
		return errors.Wrap(err, "HTTP关闭出现错误")
	}

	return nil
}

// recomputeWorker 串行接收重算请求，每次运行各起一个goroutine处理。
// 不同运行之间除了仓库的快照读之外没有共享状态
func (s *serverImpl) recomputeWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case runID := <-s.recomputeCh:
			go s.recompute(runID)
		}
	}
}

// recompute 重放一次运行的样本快照，结果删除后重插
func (s *serverImpl) recompute(runID core.RunID) {
	s.logger.Printf("开始重算运行%s", runID)

	samples, err := s.dao.QueryMetricSamples(runID)
	if err != nil {
		s.logger.Printf("读取运行%s的样本失败：%v", runID, err)
		return
	}

	result := compare.Run(runID, samples)
	if err := s.dao.SaveComparison(result); err != nil {
		s.logger.Printf("保存运行%s的比较结果失败：%v", runID, err)
		return
	}

	s.logger.Printf("运行%s重算完成", runID)
}

func (s *serverImpl) buildServer() *http.Server {
	mux := http.NewServeMux()
	const RunIDPattern = "[\\d\\w_-]{1,64}"

	mux.HandleFunc("/runs", func(writer http.ResponseWriter, request *http.Request) {
		runIDs, err := s.QueryRunIDs()
		if err != nil {
			http.Error(writer, err.Error(), http.StatusInternalServerError)
			return
		}
		s.writeJSON(writer, runIDs)
	})

	mux.HandleFunc("/runs/", func(writer http.ResponseWriter, request *http.Request) {
		rankingPattern := regexp.MustCompile(fmt.Sprintf("^/runs/(%s)/ranking$", RunIDPattern))
		reportPattern := regexp.MustCompile(fmt.Sprintf("^/runs/(%s)/report$", RunIDPattern))
		recomputePattern := regexp.MustCompile(fmt.Sprintf("^/runs/(%s)/recompute$", RunIDPattern))

		switch {
		case rankingPattern.MatchString(request.URL.Path):
			scores, err := s.QueryRanking(core.RunID(rankingPattern.FindStringSubmatch(request.URL.Path)[1]))
			if err != nil {
				s.writeRunError(writer, err)
				return
			}
			s.writeJSON(writer, scores)

		case reportPattern.MatchString(request.URL.Path):
			runID, err := s.resolveRunID(reportPattern.FindStringSubmatch(request.URL.Path)[1])
			if err != nil {
				s.writeRunError(writer, err)
				return
			}
			samples, err := s.dao.QueryMetricSamples(runID)
			if err != nil {
				http.Error(writer, err.Error(), http.StatusInternalServerError)
				return
			}
			// 报告始终可以由样本快照重新推导
			s.writeJSON(writer, report.Build(compare.Run(runID, samples)))

		case recomputePattern.MatchString(request.URL.Path):
			if request.Method != http.MethodPost {
				http.Error(writer, "只支持POST", http.StatusMethodNotAllowed)
				return
			}
			if err := s.Recompute(core.RunID(recomputePattern.FindStringSubmatch(request.URL.Path)[1])); err != nil {
				s.writeRunError(writer, err)
				return
			}
			_, _ = writer.Write([]byte("OK"))

		default:
			http.NotFound(writer, request)
		}
	})

	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: mux,
	}
	return srv
}

// resolveRunID 将路径中的latest解析为仓库中最新的RunID
func (s *serverImpl) resolveRunID(raw string) (core.RunID, error) {
	if raw == "latest" {
		return s.dao.QueryLatestRunID()
	}
	return core.RunID(raw), nil
}

func (s *serverImpl) writeRunError(writer http.ResponseWriter, err error) {
	if err == ErrRunNotFound {
		http.Error(writer, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(writer, err.Error(), http.StatusInternalServerError)
}

func (s *serverImpl) writeJSON(writer http.ResponseWriter, value interface{}) {
	marshal, err := json.Marshal(value)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	_, err = writer.Write(marshal)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
	}
}

func (s *serverImpl) serve(server *http.Server, errCh chan<- error) {
	s.logger.Printf("API服务器启动")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		errCh <- err
	}

	s.logger.Printf("API服务器结束")
	errCh <- nil
}

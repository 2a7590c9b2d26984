package server

import (
	"fmt"
	"log"
	"os"

	"github.com/packagewjx/iotdb-bench/internal/compare"
	"github.com/packagewjx/iotdb-bench/pkg/core"
	apiserver "github.com/packagewjx/iotdb-bench/pkg/server"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrRunNotFound = apiserver.ErrRunNotFound

type UpdateDao interface {
	// 先删除该RunID已有的样本再插入，一次运行的数据始终是完整快照
	SaveMetricSamples(runID core.RunID, samples []core.MetricSample) error
	// 先删除该RunID已有的比较结果再插入
	SaveComparison(result *compare.Result) error
	// 永久删除一次运行的全部数据
	RemoveRun(runID core.RunID) error
}

type QueryDao interface {
	QueryMetricSamples(runID core.RunID) ([]core.MetricSample, error)
	QueryCategoryScores(runID core.RunID) ([]core.CategoryScore, error)
	QueryFinalScores(runID core.RunID) ([]core.FinalScore, error)
	QueryLatestRunID() (core.RunID, error)
	QueryRunIDs() ([]core.RunID, error)
}

type Dao interface {
	DB() *gorm.DB
	UpdateDao
	QueryDao
}

type daoImpl struct {
	db     *gorm.DB
	logger *log.Logger
}

var _ Dao = &daoImpl{}

func NewDao(dsn string) (Dao, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	// 创建表格等
	err = db.AutoMigrate(&RunDO{}, &MetricSampleDO{}, &CategoryScoreDO{}, &FinalScoreDO{})
	if err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &daoImpl{
		db:     db,
		logger: log.New(os.Stdout, "Dao: ", log.LstdFlags|log.Lshortfile|log.Lmsgprefix),
	}, nil
}

const maxOneRun = 5000

func (d *daoImpl) SaveMetricSamples(runID core.RunID, samples []core.MetricSample) error {
	if runID == "" {
		return fmt.Errorf("RunID不能为空")
	}

	doarr := make([]*MetricSampleDO, len(samples))
	for i, sample := range samples {
		doarr[i] = &MetricSampleDO{
			RunID:    string(runID),
			Database: sample.Database,
			Category: string(sample.Category),
			Metric:   sample.Metric,
			Value:    sample.Value,
			Unit:     sample.Unit,
			Weight:   sample.Weight,
		}
	}

	d.logger.Printf("正在保存运行%s的%d条样本", runID, len(samples))

	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(&RunDO{RunID: string(runID)}).FirstOrCreate(&RunDO{RunID: string(runID)}).Error
		if err != nil {
			return errors.Wrap(err, "保存运行记录出错")
		}

		err = tx.Unscoped().Where("run_id = ?", string(runID)).Delete(&MetricSampleDO{}).Error
		if err != nil {
			return errors.Wrap(err, "删除旧样本出错")
		}

		for i := 0; i < len(doarr); i += maxOneRun {
			end := i + maxOneRun
			if end > len(doarr) {
				end = len(doarr)
			}
			if err := tx.Create(doarr[i:end]).Error; err != nil {
				return errors.Wrap(err, "插入样本出错")
			}
		}
		return nil
	})
}

func (d *daoImpl) SaveComparison(result *compare.Result) error {
	if result.RunID == "" {
		return fmt.Errorf("RunID不能为空")
	}

	categoryArr := make([]*CategoryScoreDO, len(result.CategoryScores))
	for i, cs := range result.CategoryScores {
		categoryArr[i] = &CategoryScoreDO{
			RunID:    string(result.RunID),
			Database: cs.Database,
			Category: string(cs.Category),
			Score:    cs.Score,
		}
	}

	finalArr := make([]*FinalScoreDO, len(result.FinalScores))
	for i, fs := range result.FinalScores {
		finalArr[i] = &FinalScoreDO{
			RunID:      string(result.RunID),
			Database:   fs.Database,
			TotalScore: fs.TotalScore,
			Ranking:    fs.Ranking,
			Tier:       string(fs.Tier),
		}
	}

	d.logger.Printf("正在保存运行%s的比较结果", result.RunID)

	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Where("run_id = ?", string(result.RunID)).Delete(&CategoryScoreDO{}).Error
		if err != nil {
			return errors.Wrap(err, "删除旧类别得分出错")
		}
		err = tx.Unscoped().Where("run_id = ?", string(result.RunID)).Delete(&FinalScoreDO{}).Error
		if err != nil {
			return errors.Wrap(err, "删除旧总分出错")
		}

		if len(categoryArr) > 0 {
			if err := tx.Create(categoryArr).Error; err != nil {
				return errors.Wrap(err, "插入类别得分出错")
			}
		}
		if len(finalArr) > 0 {
			if err := tx.Create(finalArr).Error; err != nil {
				return errors.Wrap(err, "插入总分出错")
			}
		}
		return nil
	})
}

func (d *daoImpl) RemoveRun(runID core.RunID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&MetricSampleDO{}, &CategoryScoreDO{}, &FinalScoreDO{}, &RunDO{}} {
			err := tx.Unscoped().Where("run_id = ?", string(runID)).Delete(model).Error
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("删除运行%s的数据出错", runID))
			}
		}
		return nil
	})
}

func (d *daoImpl) QueryMetricSamples(runID core.RunID) ([]core.MetricSample, error) {
	doarr := []*MetricSampleDO{}
	err := d.db.Order("id asc").Find(&doarr, &MetricSampleDO{RunID: string(runID)}).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询运行%s的样本出错", runID))
	}

	result := make([]core.MetricSample, len(doarr))
	for i, do := range doarr {
		result[i] = core.MetricSample{
			Database: do.Database,
			Category: core.Category(do.Category),
			Metric:   do.Metric,
			Value:    do.Value,
			Unit:     do.Unit,
			Weight:   do.Weight,
		}
	}
	return result, nil
}

func (d *daoImpl) QueryCategoryScores(runID core.RunID) ([]core.CategoryScore, error) {
	doarr := []*CategoryScoreDO{}
	err := d.db.Find(&doarr, &CategoryScoreDO{RunID: string(runID)}).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询运行%s的类别得分出错", runID))
	}

	result := make([]core.CategoryScore, len(doarr))
	for i, do := range doarr {
		result[i] = core.CategoryScore{
			Database: do.Database,
			Category: core.Category(do.Category),
			Score:    do.Score,
		}
	}
	return result, nil
}

func (d *daoImpl) QueryFinalScores(runID core.RunID) ([]core.FinalScore, error) {
	doarr := []*FinalScoreDO{}
	err := d.db.Order("ranking asc, `database` asc").Find(&doarr, &FinalScoreDO{RunID: string(runID)}).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("查询运行%s的总分出错", runID))
	}

	categoryScores, err := d.QueryCategoryScores(runID)
	if err != nil {
		return nil, err
	}
	byDatabase := make(map[string]map[core.Category]float64)
	for _, cs := range categoryScores {
		m, ok := byDatabase[cs.Database]
		if !ok {
			m = make(map[core.Category]float64)
			byDatabase[cs.Database] = m
		}
		m[cs.Category] = cs.Score
	}

	result := make([]core.FinalScore, len(doarr))
	for i, do := range doarr {
		result[i] = core.FinalScore{
			Database:       do.Database,
			CategoryScores: byDatabase[do.Database],
			TotalScore:     do.TotalScore,
			Ranking:        do.Ranking,
			Tier:           core.Tier(do.Tier),
		}
	}
	return result, nil
}

func (d *daoImpl) QueryLatestRunID() (core.RunID, error) {
	record := &RunDO{}
	err := d.db.Order("created_at desc, id desc").First(record).Error
	if err == gorm.ErrRecordNotFound {
		return "", ErrRunNotFound
	} else if err != nil {
		return "", errors.Wrap(err, "查询最新运行出错")
	}
	return core.RunID(record.RunID), nil
}

func (d *daoImpl) QueryRunIDs() ([]core.RunID, error) {
	doarr := []*RunDO{}
	err := d.db.Order("created_at asc, id asc").Find(&doarr).Error
	if err != nil {
		return nil, errors.Wrap(err, "查询运行列表出错")
	}
	result := make([]core.RunID, len(doarr))
	for i, do := range doarr {
		result[i] = core.RunID(do.RunID)
	}
	return result, nil
}

func (d *daoImpl) DB() *gorm.DB {
	return d.db
}

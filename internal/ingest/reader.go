package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
)

// NumFields CSV每行的字段数，顺序为database,category,metric,value,unit,weight
const NumFields = 6

// Header 导入文件的表头
var Header = []string{"database", "category", "metric", "value", "unit", "weight"}

// RowError 单行数据的校验错误，记录行号与出错的字段
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("第%d行字段%s有误：%v", e.Line, e.Field, e.Err)
}

// ReadSamples 从CSV输入读取MetricSample。首行为表头。
// 采用部分容错策略：某一行数据有误时记录一条RowError并继续处理其余行，
// 不会因单行错误放弃整批数据。只有读取本身失败才返回error。
func ReadSamples(in io.Reader) ([]core.MetricSample, []*RowError, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = NumFields
	reader.TrimLeadingSpace = true

	samples := make([]core.MetricSample, 0)
	rowErrors := make([]*RowError, 0)

	line := 0
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				rowErrors = append(rowErrors, &RowError{Line: line, Field: "-", Err: err})
				continue
			}
			return nil, nil, errors.Wrap(err, "读取CSV数据失败")
		}

		if line == 1 && record[0] == Header[0] {
			// 表头行
			continue
		}

		sample, rowErr := parseRecord(line, record)
		if rowErr != nil {
			rowErrors = append(rowErrors, rowErr)
			continue
		}
		samples = append(samples, *sample)
	}

	return samples, rowErrors, nil
}

func parseRecord(line int, record []string) (*core.MetricSample, *RowError) {
	if record[0] == "" {
		return nil, &RowError{Line: line, Field: "database", Err: fmt.Errorf("数据库名不能为空")}
	}

	category := core.Category(record[1])
	if !core.ValidCategory(category) {
		return nil, &RowError{Line: line, Field: "category", Err: fmt.Errorf("未知的测试类别%s", record[1])}
	}

	if record[2] == "" {
		return nil, &RowError{Line: line, Field: "metric", Err: fmt.Errorf("指标名不能为空")}
	}

	value, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return nil, &RowError{Line: line, Field: "value", Err: errors.Wrap(err, "数值解析失败")}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, &RowError{Line: line, Field: "value", Err: fmt.Errorf("数值必须是有限的，现在为%s", record[3])}
	}

	weight, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return nil, &RowError{Line: line, Field: "weight", Err: errors.Wrap(err, "权重解析失败")}
	}
	// NaN与0到1的比较都为false，需要单独拒绝
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return nil, &RowError{Line: line, Field: "weight", Err: fmt.Errorf("权重应该在0到1之间，现在为%f", weight)}
	}

	return &core.MetricSample{
		Database: record[0],
		Category: category,
		Metric:   record[2],
		Value:    value,
		Unit:     record[4],
		Weight:   weight,
	}, nil
}

package ingest

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/packagewjx/iotdb-bench/pkg/core"
	"github.com/pkg/errors"
)

// WriteSamples 将指标样本写成带表头的CSV，列序与ReadSamples一致
func WriteSamples(w io.Writer, samples []core.MetricSample) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return errors.Wrap(err, "写入表头出错")
	}
	for _, sample := range samples {
		record := []string{
			sample.Database,
			string(sample.Category),
			sample.Metric,
			strconv.FormatFloat(sample.Value, 'f', -1, 64),
			sample.Unit,
			strconv.FormatFloat(sample.Weight, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "写入样本出错")
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "写入CSV出错")
}

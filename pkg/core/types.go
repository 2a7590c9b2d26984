package core

// RunID 标识一次完整的基准测试运行。同一个RunID的所有数据为一个快照，
// 重算时整体删除后重新插入，不与历史运行合并。
type RunID string

type Category string

const (
	CategoryIngestion Category = "ingestion"
	CategoryQuery     Category = "query"
	CategoryStorage   Category = "storage"
	CategoryIndexing  Category = "indexing"
	CategorySecurity  Category = "security"
)

// Categories 固定的五个测试类别，顺序即报告输出顺序
var Categories = []Category{
	CategoryIngestion,
	CategoryQuery,
	CategoryStorage,
	CategoryIndexing,
	CategorySecurity,
}

// CategoryWeights 各类别在总分中的固定权重，总和为1.0
var CategoryWeights = map[Category]float64{
	CategoryIngestion: 0.25,
	CategoryQuery:     0.25,
	CategoryStorage:   0.20,
	CategoryIndexing:  0.20,
	CategorySecurity:  0.10,
}

func ValidCategory(c Category) bool {
	_, ok := CategoryWeights[c]
	return ok
}

type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierPoor      Tier = "Poor"
)

// TierOf 根据总分确定等级，边界值含下界（80.0即为Excellent）
func TierOf(totalScore float64) Tier {
	switch {
	case totalScore >= 80:
		return TierExcellent
	case totalScore >= 60:
		return TierGood
	case totalScore >= 40:
		return TierFair
	default:
		return TierPoor
	}
}

type MetricSample struct {
	Database string   `json:"database"`
	Category Category `json:"category"`
	Metric   string   `json:"metric"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit"`
	Weight   float64  `json:"weight"` // 范围[0,1]，0表示只参与类别均分
}

type MetricStats struct {
	Min            float64
	Max            float64
	HigherIsBetter bool
}

type NormalizedScore struct {
	Database string   `json:"database"`
	Category Category `json:"category"`
	Metric   string   `json:"metric"`
	Score    float64  `json:"score"` // 始终在[0,100]内
}

type CategoryScore struct {
	Database string   `json:"database"`
	Category Category `json:"category"`
	Score    float64  `json:"score"`
}

type FinalScore struct {
	Database       string               `json:"database"`
	CategoryScores map[Category]float64 `json:"categoryScores"` // 缺失的类别不在map中，不会以0填充
	TotalScore     float64              `json:"totalScore"`
	Ranking        int                  `json:"ranking"`
	Tier           Tier                 `json:"tier"`
}

const LineBreak = '\n'

const Splitter = ","

// Package preprocessing holds target-aware column transformations applied
// before model fitting.
package preprocessing

import (
	"math"
	"sort"

	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/core/parallel"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationSelector は目的変数との相関の絶対値が大きい上位 k 列を選ぶ
//
// 使用例:
//
//	sel := preprocessing.NewCorrelationSelector(5, columns)
//	err := sel.Fit(X, y)
//	XTop, err := sel.Transform(X)
type CorrelationSelector struct {
	model.BaseEstimator

	k     int
	names []string

	scores   []float64
	selected []int
}

// NewCorrelationSelector は k 列を選ぶセレクタを作成する。names は X の列名（列順）。
func NewCorrelationSelector(k int, names []string) *CorrelationSelector {
	return &CorrelationSelector{
		k:     k,
		names: append([]string(nil), names...),
	}
}

// Fit は各列と y のピアソン相関の絶対値を計算し、降順に上位 k 列を決める
//
// 同じ値の列はデータセットの列順を保つ（安定ソート）。分散ゼロの列は相関が
// 定義できないため UndefinedMetricWarning を出して 0 として扱う。
func (s *CorrelationSelector) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("CorrelationSelector.Fit", "empty data", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != rows {
		return errors.NewDimensionError("CorrelationSelector.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("CorrelationSelector.Fit", "y must be a column vector")
	}
	if len(s.names) != cols {
		return errors.NewDimensionError("CorrelationSelector.Fit", len(s.names), cols, 1)
	}
	if s.k < 1 || s.k > cols {
		return errors.NewValidationError("k", "must be between 1 and the number of columns", s.k)
	}

	target := mat.Col(nil, 0, y)
	scores := make([]float64, cols)
	parallel.Parallelize(cols, func(start, end int) {
		for j := start; j < end; j++ {
			scores[j] = math.Abs(stat.Correlation(mat.Col(nil, j, X), target, nil))
		}
	})
	for j, v := range scores {
		if math.IsNaN(v) {
			errors.Warn(errors.NewUndefinedMetricWarning(
				"pearson_correlation("+s.names[j]+")", "zero variance", 0))
			scores[j] = 0
		}
	}

	order := make([]int, cols)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	s.scores = scores
	s.selected = order[:s.k]
	s.SetFitted()
	return nil
}

// Transform は選択された列だけを選択順に並べた行列を返す
func (s *CorrelationSelector) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.RequireFitted("CorrelationSelector", "Transform"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != len(s.names) {
		return nil, errors.NewDimensionError("CorrelationSelector.Transform", len(s.names), cols, 1)
	}

	out := mat.NewDense(rows, len(s.selected), nil)
	for i := 0; i < rows; i++ {
		for k, j := range s.selected {
			out.Set(i, k, X.At(i, j))
		}
	}
	return out, nil
}

// FitTransform は Fit と Transform を続けて実行する
func (s *CorrelationSelector) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X, y); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Selected returns the names of the chosen columns, strongest first.
func (s *CorrelationSelector) Selected() []string {
	out := make([]string, len(s.selected))
	for k, j := range s.selected {
		out[k] = s.names[j]
	}
	return out
}

// SelectedIndices returns the column indices of the chosen columns, strongest first.
func (s *CorrelationSelector) SelectedIndices() []int {
	return append([]int(nil), s.selected...)
}

// Scores returns |r| for every input column, in input order.
func (s *CorrelationSelector) Scores() []float64 {
	return append([]float64(nil), s.scores...)
}

// Names returns the input column names.
func (s *CorrelationSelector) Names() []string {
	return append([]string(nil), s.names...)
}

var _ model.SupervisedTransformer = (*CorrelationSelector)(nil)

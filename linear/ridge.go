// Package linear provides the closed-form ridge regression used by the trainer
// and the prediction service.
package linear

import (
	"fmt"

	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/core/parallel"
	"github.com/2022bcs0010-jaasir/lab7/metrics"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// ModelType is the artifact model_type written by ExportWeights.
	ModelType = "Ridge"
	// WeightsVersion is the artifact format version.
	WeightsVersion = "1.0.0"

	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	parallelThreshold = 1000
)

// Ridge は L2 正則化付きの線形回帰モデル
//
// 目的関数 ||y - Xw - b||² + alpha*||w||² を閉形式で解く。切片 b は正則化しない。
type Ridge struct {
	model.BaseEstimator

	alpha        float64
	fitIntercept bool

	coef      []float64
	intercept float64
	features  []string
	nFeatures int
	nSamples  int
}

// NewRidge は新しい Ridge を作成する（デフォルト: alpha=1.0, 切片あり）
func NewRidge(opts ...Option) *Ridge {
	r := &Ridge{
		alpha:        1.0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit はモデルを訓練データで学習させる
//
// X と y を中心化し、(Xcᵀ Xc + alpha*I) w = Xcᵀ yc をコレスキー分解で解く。
// 切片は b = mean(y) - mean(X)·w。
func (r *Ridge) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("Ridge.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}
	if r.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", r.alpha)
	}
	if r.features != nil && len(r.features) != cols {
		return errors.NewDimensionError("Ridge.Fit", len(r.features), cols, 1)
	}

	xMean := make([]float64, cols)
	var yMean float64
	if r.fitIntercept {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				xMean[j] += X.At(i, j)
			}
			yMean += y.At(i, 0)
		}
		for j := range xMean {
			xMean[j] /= float64(rows)
		}
		yMean /= float64(rows)
	}

	// 中心化した設計行列と目的変数
	xc := mat.NewDense(rows, cols, nil)
	yc := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				xc.Set(i, j, X.At(i, j)-xMean[j])
			}
			yc.SetVec(i, y.At(i, 0)-yMean)
		}
	})

	// A = Xcᵀ Xc + alpha*I
	var a mat.SymDense
	a.SymOuterK(1, xc.T())
	for j := 0; j < cols; j++ {
		a.SetSym(j, j, a.At(j, j)+r.alpha)
	}

	var b mat.VecDense
	b.MulVec(xc.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&a); !ok {
		return errors.NewModelError("Ridge.Fit", "normal matrix is not positive definite", errors.ErrSingularMatrix)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &b); err != nil {
		return errors.NewModelError("Ridge.Fit", "ill-conditioned normal matrix: "+err.Error(), errors.ErrSingularMatrix)
	}

	coef := make([]float64, cols)
	intercept := yMean
	for j := 0; j < cols; j++ {
		coef[j] = w.AtVec(j)
		intercept -= xMean[j] * coef[j]
	}
	if err := errors.CheckNumericalStability("Ridge.Fit", append(coef[:len(coef):len(coef)], intercept)); err != nil {
		return err
	}

	r.coef = coef
	r.intercept = intercept
	r.nFeatures = cols
	r.nSamples = rows
	r.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
//
// 列数が学習時と異なる場合は DimensionError を返す。
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := r.RequireFitted("Ridge", "Predict"); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if cols != r.nFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", r.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			pred := r.intercept
			for j := 0; j < cols; j++ {
				pred += X.At(i, j) * r.coef[j]
			}
			predictions.Set(i, 0, pred)
		}
	})
	return predictions, nil
}

// Score はモデルの決定係数（R²）を計算する
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	report, err := metrics.Evaluate(y, yPred)
	if err != nil {
		return 0, err
	}
	return report.R2, nil
}

// Coef は学習された重み係数のコピーを返す
func (r *Ridge) Coef() []float64 {
	if r.coef == nil {
		return nil
	}
	return append([]float64(nil), r.coef...)
}

// Intercept は学習された切片を返す
func (r *Ridge) Intercept() float64 {
	return r.intercept
}

// Alpha returns the regularization strength.
func (r *Ridge) Alpha() float64 {
	return r.alpha
}

// FeatureNames returns the column names the model expects, in order.
func (r *Ridge) FeatureNames() []string {
	return append([]string(nil), r.features...)
}

// NFeatures returns the input width seen during fitting.
func (r *Ridge) NFeatures() int {
	return r.nFeatures
}

// ExportWeights はモデルの重みをアーティファクトとしてエクスポートする
func (r *Ridge) ExportWeights() (*model.ModelWeights, error) {
	if err := r.RequireFitted("Ridge", "ExportWeights"); err != nil {
		return nil, err
	}
	if len(r.features) != r.nFeatures {
		return nil, errors.NewSchemaError("Ridge.ExportWeights", nil,
			fmt.Sprintf("%d feature names for %d coefficients", len(r.features), r.nFeatures))
	}

	weights := &model.ModelWeights{
		ModelType:    ModelType,
		Version:      WeightsVersion,
		Coefficients: r.Coef(),
		Intercept:    r.intercept,
		Features:     r.FeatureNames(),
		Hyperparameters: map[string]interface{}{
			"alpha":         r.alpha,
			"fit_intercept": r.fitIntercept,
		},
		Metadata: map[string]interface{}{
			"n_features": r.nFeatures,
			"n_samples":  r.nSamples,
		},
		IsFitted: true,
	}
	weights.Seal()
	return weights, nil
}

// ImportWeights はアーティファクトから重みを復元する（形式とチェックサムを検証）
func (r *Ridge) ImportWeights(weights *model.ModelWeights) error {
	if weights == nil {
		return errors.NewValueError("Ridge.ImportWeights", "weights cannot be nil")
	}
	if weights.ModelType != ModelType {
		return errors.NewValidationError("model_type", "expected "+ModelType, weights.ModelType)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if err := weights.VerifyChecksum(); err != nil {
		return err
	}

	if alpha, ok := weights.FloatParam("alpha"); ok {
		r.alpha = alpha
	}
	if fit, ok := weights.BoolParam("fit_intercept"); ok {
		r.fitIntercept = fit
	}
	if v, ok := weights.Metadata["n_samples"].(float64); ok {
		r.nSamples = int(v)
	}

	r.coef = append([]float64(nil), weights.Coefficients...)
	r.intercept = weights.Intercept
	r.features = append([]string(nil), weights.Features...)
	r.nFeatures = len(r.coef)
	r.SetFitted()
	return nil
}

// String returns the string representation of the model
func (r *Ridge) String() string {
	if !r.IsFitted() {
		return fmt.Sprintf("Ridge(alpha=%g, fit_intercept=%t)", r.alpha, r.fitIntercept)
	}
	return fmt.Sprintf("Ridge(alpha=%g, fit_intercept=%t, n_features=%d, fitted=true)",
		r.alpha, r.fitIntercept, r.nFeatures)
}

var (
	_ model.Regressor      = (*Ridge)(nil)
	_ model.WeightExporter = (*Ridge)(nil)
)

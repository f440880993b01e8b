// Package model holds the estimator contracts and the persisted weight
// artifact shared by the trainer and the prediction service.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	// Score はモデルの決定係数（R²）を計算する
	Score(X, y mat.Matrix) (float64, error)
}

// SupervisedTransformer learns a column transformation from X and y,
// for example a feature selection driven by the target.
type SupervisedTransformer interface {
	Fit(X, y mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// WeightExporter は重みをアーティファクトとして出し入れできるモデル
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}

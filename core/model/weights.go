package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
)

// ModelWeights はモデルの重みを表す構造体（シリアライゼーション用）
//
// Features は学習時の列順をそのまま保持する。推論側はこの順序で入力を並べ替える。
type ModelWeights struct {
	// ModelType はモデルの種類（Ridge 等）
	ModelType string `json:"model_type"`

	// Version はアーティファクト形式のバージョン
	Version string `json:"version"`

	// Coefficients は重み係数（Features と同じ順序）
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は学習に使った特徴量の名前
	Features []string `json:"features"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（学習時のサンプル数等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Checksum は Features, Coefficients, Intercept の sha256
	Checksum string `json:"checksum"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ComputeChecksum returns the hex sha256 of the JSON encoding of the schema
// and parameters. Go's float formatting round-trips exactly, so the value is
// stable across a save/load cycle.
func ComputeChecksum(features []string, coefficients []float64, intercept float64) string {
	payload := struct {
		Features     []string  `json:"features"`
		Coefficients []float64 `json:"coefficients"`
		Intercept    float64   `json:"intercept"`
	}{features, coefficients, intercept}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Seal computes and stores the checksum.
func (mw *ModelWeights) Seal() {
	mw.Checksum = ComputeChecksum(mw.Features, mw.Coefficients, mw.Intercept)
}

// VerifyChecksum は保存されたチェックサムと再計算した値を比較する
func (mw *ModelWeights) VerifyChecksum() error {
	if mw.Checksum == "" {
		return errors.NewValidationError("checksum", "is required", mw.Checksum)
	}
	if mw.Checksum != ComputeChecksum(mw.Features, mw.Coefficients, mw.Intercept) {
		return errors.WithStack(errors.ErrChecksumMismatch)
	}
	return nil
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}
	if !mw.IsFitted {
		return errors.NewValidationError("is_fitted", "artifact must hold a fitted model", mw.IsFitted)
	}
	if len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", len(mw.Coefficients))
	}
	if len(mw.Features) != len(mw.Coefficients) {
		return errors.NewSchemaError("ModelWeights.Validate", nil,
			"features and coefficients differ in length")
	}

	seen := make(map[string]struct{}, len(mw.Features))
	for _, f := range mw.Features {
		if f == "" {
			return errors.NewValidationError("features", "empty feature name", mw.Features)
		}
		if _, dup := seen[f]; dup {
			return errors.NewValidationError("features", "duplicate feature name", f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// FloatParam reads a numeric hyperparameter. JSON decoding yields float64,
// freshly built artifacts may hold other numeric types.
func (mw *ModelWeights) FloatParam(name string) (float64, bool) {
	switch v := mw.Hyperparameters[name].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// BoolParam reads a boolean hyperparameter.
func (mw *ModelWeights) BoolParam(name string) (bool, bool) {
	v, ok := mw.Hyperparameters[name].(bool)
	return v, ok
}

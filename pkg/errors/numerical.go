package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// NumericalInstabilityError は数値計算が NaN や Inf を生んだ場合のエラーです。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "ridge_solve", "predict"）
	Values    []float64 // 問題のある値
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("lab7: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values})
}

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value})
	}
	return nil
}

// RoundToInt rounds value half away from zero and converts it to int. Values
// that are not finite or fall outside the int range are rejected.
func RoundToInt(operation string, value float64) (int, error) {
	if err := CheckScalar(operation, value); err != nil {
		return 0, err
	}
	r := math.Round(value)
	// float64(math.MaxInt) is 2^63, one past the largest int.
	if r >= float64(math.MaxInt) || r < float64(math.MinInt) {
		return 0, NewNumericalInstabilityError(operation, []float64{value})
	}
	return int(r), nil
}

package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// quality はワインの品質スコア（整数ラベル）からベクトルを作る
func quality(v ...float64) *mat.VecDense {
	return mat.NewVecDense(len(v), v)
}

type vectorCase struct {
	name    string
	yTrue   *mat.VecDense
	yPred   *mat.VecDense
	want    float64
	wantErr bool
}

func runVectorCases(t *testing.T, fn string, f func(yTrue, yPred *mat.VecDense) (float64, error), cases []vectorCase) {
	t.Helper()
	const tol = 1e-10
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s() error = %v, wantErr %v", fn, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tol {
				t.Errorf("%s() = %v, want %v", fn, got, tt.want)
			}
		})
	}
}

func TestMSE(t *testing.T) {
	runVectorCases(t, "MSE", MSE, []vectorCase{
		{
			name:  "exact scores",
			yTrue: quality(5, 6, 5, 7, 4),
			yPred: quality(5, 6, 5, 7, 4),
			want:  0,
		},
		{
			// 各行 0.5 ずれ → 0.25
			name:  "half a point off everywhere",
			yTrue: quality(5, 6, 5, 7),
			yPred: quality(5.5, 5.5, 5.5, 6.5),
			want:  0.25,
		},
		{
			// (0 + 0 + 9) / 3
			name:  "one badly missed wine",
			yTrue: quality(5, 6, 7),
			yPred: quality(5, 6, 4),
			want:  3,
		},
		{
			name:    "test split and predictions differ in length",
			yTrue:   quality(5, 6, 7),
			yPred:   quality(5, 6),
			wantErr: true,
		},
		{
			name:    "empty test split",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	})
}

func TestRMSE(t *testing.T) {
	runVectorCases(t, "RMSE", RMSE, []vectorCase{
		{
			name:  "exact scores",
			yTrue: quality(3, 8, 6),
			yPred: quality(3, 8, 6),
			want:  0,
		},
		{
			name:  "always one point high",
			yTrue: quality(5, 5, 5, 5),
			yPred: quality(6, 6, 6, 6),
			want:  1,
		},
		{
			// MSE = (4 + 0) / 2
			name:  "two point miss on one of two",
			yTrue: quality(6, 5),
			yPred: quality(4, 5),
			want:  math.Sqrt2,
		},
		{
			name:    "length mismatch",
			yTrue:   quality(5, 6, 7),
			yPred:   quality(5, 6),
			wantErr: true,
		},
	})
}

func TestMAE(t *testing.T) {
	runVectorCases(t, "MAE", MAE, []vectorCase{
		{
			name:  "exact scores",
			yTrue: quality(5, 6, 5, 7, 4),
			yPred: quality(5, 6, 5, 7, 4),
			want:  0,
		},
		{
			name:  "half a point off everywhere",
			yTrue: quality(5, 6, 5, 7),
			yPred: quality(5.5, 5.5, 5.5, 6.5),
			want:  0.5,
		},
		{
			// 符号は打ち消し合わない
			name:  "misses in both directions",
			yTrue: quality(5, 6, 7, 4),
			yPred: quality(6, 5, 8, 3),
			want:  1,
		},
		{
			name:    "length mismatch",
			yTrue:   quality(5, 6, 7),
			yPred:   quality(5, 6),
			wantErr: true,
		},
	})
}

func TestR2Score(t *testing.T) {
	runVectorCases(t, "R2Score", R2Score, []vectorCase{
		{
			name:  "exact scores",
			yTrue: quality(5, 6, 5, 7, 4),
			yPred: quality(5, 6, 5, 7, 4),
			want:  1,
		},
		{
			// 平均値 5.5 を返すだけのモデル
			name:  "predicting the mean quality",
			yTrue: quality(4, 5, 6, 7),
			yPred: quality(5.5, 5.5, 5.5, 5.5),
			want:  0,
		},
		{
			// RSS = 20, TSS = 5
			name:  "ranking reversed",
			yTrue: quality(4, 5, 6, 7),
			yPred: quality(7, 6, 5, 4),
			want:  -3,
		},
		{
			name:    "every wine rated the same",
			yTrue:   quality(6, 6, 6, 6, 6),
			yPred:   quality(5, 6, 7, 6, 6),
			wantErr: true,
		},
		{
			name:    "length mismatch",
			yTrue:   quality(5, 6, 7),
			yPred:   quality(5, 6),
			wantErr: true,
		},
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   mat.Matrix
		yPred   mat.Matrix
		want    Report
		wantErr bool
	}{
		{
			// 平均 5.75, TSS = 2.75, RSS = 1
			name:  "ridge output as n×1 matrix",
			yTrue: mat.NewDense(4, 1, []float64{5, 6, 5, 7}),
			yPred: mat.NewDense(4, 1, []float64{5.5, 5.5, 5.5, 6.5}),
			want:  Report{MSE: 0.25, RMSE: 0.5, MAE: 0.5, R2: 1 - 1/2.75},
		},
		{
			name:  "labels as vector",
			yTrue: quality(5, 6, 7),
			yPred: mat.NewDense(3, 1, []float64{5, 6, 7}),
			want:  Report{MSE: 0, RMSE: 0, MAE: 0, R2: 1},
		},
		{
			name:    "two prediction columns",
			yTrue:   mat.NewDense(2, 2, []float64{5, 6, 7, 5}),
			yPred:   mat.NewDense(2, 2, []float64{5, 6, 7, 5}),
			wantErr: true,
		},
		{
			name:    "row mismatch",
			yTrue:   mat.NewDense(3, 1, []float64{5, 6, 7}),
			yPred:   mat.NewDense(2, 1, []float64{5, 6}),
			wantErr: true,
		},
	}

	const tol = 1e-10
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got.MSE-tt.want.MSE) > tol ||
				math.Abs(got.RMSE-tt.want.RMSE) > tol ||
				math.Abs(got.MAE-tt.want.MAE) > tol ||
				math.Abs(got.R2-tt.want.R2) > tol {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// 320 行のテスト分割（1599 行の 20%）を想定したベンチマーク
func BenchmarkEvaluate(b *testing.B) {
	const n = 320
	yTrue := mat.NewVecDense(n, nil)
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		q := float64(3 + i%6)
		yTrue.SetVec(i, q)
		yPred.SetVec(i, q+0.1*float64(i%7)-0.3)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Evaluate(yTrue, yPred)
	}
}

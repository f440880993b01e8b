package trainer

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var wineColumns = []string{
	"fixed acidity", "volatile acidity", "citric acid", "residual sugar",
	"chlorides", "free sulfur dioxide", "total sulfur dioxide", "density",
	"pH", "sulphates", "alcohol",
}

// column ranges loosely follow the red wine data
var wineRanges = [][2]float64{
	{4.6, 15.9}, {0.12, 1.2}, {0, 1}, {0.9, 8},
	{0.012, 0.3}, {1, 60}, {6, 200}, {0.990, 1.004},
	{2.9, 4.0}, {0.4, 1.2}, {8.5, 14},
}

// syntheticQuality is the noise-free score the generated labels are rounded from.
func syntheticQuality(row []float64) float64 {
	q := 5.6 +
		0.3*(row[10]-10.4) -
		1.5*(row[1]-0.53) +
		1.5*(row[9]-0.66)
	return math.Max(3, math.Min(8, q))
}

// writeSyntheticWine writes n deterministic rows in the dataset's CSV layout.
func writeSyntheticWine(t *testing.T, dir string, n int) string {
	t.Helper()

	rng := rand.New(rand.NewPCG(7, 7))
	var b strings.Builder
	quoted := make([]string, 0, len(wineColumns)+1)
	for _, c := range append(wineColumns, "quality") {
		quoted = append(quoted, `"`+c+`"`)
	}
	b.WriteString(strings.Join(quoted, ";") + "\n")

	row := make([]float64, len(wineColumns))
	cells := make([]string, len(wineColumns)+1)
	for i := 0; i < n; i++ {
		for j, r := range wineRanges {
			row[j] = r[0] + rng.Float64()*(r[1]-r[0])
			cells[j] = fmt.Sprintf("%g", row[j])
		}
		cells[len(wineColumns)] = fmt.Sprintf("%g", math.Round(syntheticQuality(row)))
		b.WriteString(strings.Join(cells, ";") + "\n")
	}

	path := filepath.Join(dir, "winequality-red.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// Package dataset loads the semicolon-separated wine-quality CSV into gonum
// matrices and produces reproducible train/test splits.
package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gonum.org/v1/gonum/mat"
)

// Frame is a numeric table split into feature columns and one target column.
type Frame struct {
	// Features are the non-target column names in file order.
	Features []string
	// Target is the name of the label column.
	Target string
	// X holds one row per sample, columns ordered as Features.
	X *mat.Dense
	// Y holds the label of each row.
	Y *mat.VecDense
}

// LoadCSV reads the dataset at path. See Read.
func LoadCSV(path, target string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	frame, err := Read(f, target)
	if err != nil {
		return nil, errors.Wrapf(err, "load dataset %s", path)
	}
	return frame, nil
}

// Read parses a ';'-separated table with a header row. A UTF-8 byte order
// mark and quoted header names are accepted. When the header names target
// more than once, the last occurrence is the label. Every cell must parse
// as a float.
func Read(r io.Reader, target string) (*Frame, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.Comma = ';'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataset.Read", "missing header", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	targetIdx := -1
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
		if header[i] == target {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return nil, errors.NewValidationError("target", "column not found in header", target)
	}
	if len(header) < 2 {
		return nil, errors.NewValueError("dataset.Read", "need at least one feature column besides the target")
	}

	features := make([]string, 0, len(header)-1)
	for i, name := range header {
		if i != targetIdx {
			features = append(features, name)
		}
	}

	var (
		xs []float64
		ys []float64
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read record")
		}
		line, _ := reader.FieldPos(0)
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d, column %q", line, header[i])
			}
			if i == targetIdx {
				ys = append(ys, v)
			} else {
				xs = append(xs, v)
			}
		}
	}
	if len(ys) == 0 {
		return nil, errors.NewModelError("dataset.Read", "no data rows", errors.ErrEmptyData)
	}

	return &Frame{
		Features: features,
		Target:   target,
		X:        mat.NewDense(len(ys), len(features), xs),
		Y:        mat.NewVecDense(len(ys), ys),
	}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.Y.Len()
}

// Rows returns copies of the given rows of X and Y.
func (f *Frame) Rows(idx []int) (*mat.Dense, *mat.VecDense) {
	return SubsetRows(f.X, f.Y, idx)
}

// SubsetRows copies the rows idx of x and y, in idx order.
func SubsetRows(x mat.Matrix, y mat.Vector, idx []int) (*mat.Dense, *mat.VecDense) {
	_, c := x.Dims()
	xs := mat.NewDense(len(idx), c, nil)
	ys := mat.NewVecDense(len(idx), nil)
	for k, i := range idx {
		for j := 0; j < c; j++ {
			xs.Set(k, j, x.At(i, j))
		}
		ys.SetVec(k, y.AtVec(i))
	}
	return xs, ys
}

// Split holds row indices for a train/test partition.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles [0, n) with a PCG generator seeded by seed and
// assigns the first ceil(testSize*n) indices to the test set. The result
// depends only on n, testSize and seed.
func TrainTestSplit(n int, testSize float64, seed uint64) (Split, error) {
	if n < 2 {
		return Split{}, errors.NewValidationError("n", "need at least two rows to split", n)
	}
	if testSize <= 0 || testSize >= 1 {
		return Split{}, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return Split{}, errors.NewValidationError("test_size", "leaves no training rows", testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	return Split{
		Train: perm[nTest:],
		Test:  perm[:nTest],
	}, nil
}

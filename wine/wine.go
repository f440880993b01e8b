// Package wine defines the prediction request schema and maps it onto the
// feature order stored in a trained model artifact.
package wine

import (
	"strings"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Sample is one wine measurement as accepted by POST /predict. Pointer
// fields let binding tell a missing field apart from an explicit zero.
type Sample struct {
	FixedAcidity       *float64 `json:"fixed_acidity" binding:"required"`
	VolatileAcidity    *float64 `json:"volatile_acidity" binding:"required"`
	CitricAcid         *float64 `json:"citric_acid" binding:"required"`
	ResidualSugar      *float64 `json:"residual_sugar" binding:"required"`
	Chlorides          *float64 `json:"chlorides" binding:"required"`
	FreeSulfurDioxide  *float64 `json:"free_sulfur_dioxide" binding:"required"`
	TotalSulfurDioxide *float64 `json:"total_sulfur_dioxide" binding:"required"`
	Density            *float64 `json:"density" binding:"required"`
	PH                 *float64 `json:"pH" binding:"required"`
	Sulphates          *float64 `json:"sulphates" binding:"required"`
	Alcohol            *float64 `json:"alcohol" binding:"required"`
}

// FieldOrder lists the request fields in dataset column order.
var FieldOrder = []string{
	"fixed_acidity",
	"volatile_acidity",
	"citric_acid",
	"residual_sugar",
	"chlorides",
	"free_sulfur_dioxide",
	"total_sulfur_dioxide",
	"density",
	"pH",
	"sulphates",
	"alcohol",
}

// FieldName maps a dataset column name ("fixed acidity") to its request
// field name ("fixed_acidity").
func FieldName(column string) string {
	return strings.ReplaceAll(strings.TrimSpace(column), " ", "_")
}

// Vector returns the 11 measurements in FieldOrder. It fails when a field
// is nil.
func (s *Sample) Vector() ([]float64, error) {
	fields := []*float64{
		s.FixedAcidity,
		s.VolatileAcidity,
		s.CitricAcid,
		s.ResidualSugar,
		s.Chlorides,
		s.FreeSulfurDioxide,
		s.TotalSulfurDioxide,
		s.Density,
		s.PH,
		s.Sulphates,
		s.Alcohol,
	}

	out := make([]float64, len(fields))
	var missing []string
	for i, f := range fields {
		if f == nil {
			missing = append(missing, FieldOrder[i])
			continue
		}
		out[i] = *f
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError("Sample.Vector", missing, "required fields are missing")
	}
	return out, nil
}

// Projector picks the model's input columns out of a full request vector.
type Projector struct {
	features []string
	index    []int
}

// NewProjector resolves every artifact feature against FieldOrder. A feature
// with no matching request field yields a SchemaError listing all of them.
func NewProjector(features []string) (*Projector, error) {
	if len(features) == 0 {
		return nil, errors.NewSchemaError("wine.NewProjector", nil, "artifact lists no features")
	}

	pos := make(map[string]int, len(FieldOrder))
	for i, name := range FieldOrder {
		pos[name] = i
	}

	p := &Projector{
		features: append([]string(nil), features...),
		index:    make([]int, len(features)),
	}
	var unknown []string
	for k, f := range features {
		i, ok := pos[FieldName(f)]
		if !ok {
			unknown = append(unknown, f)
			continue
		}
		p.index[k] = i
	}
	if len(unknown) > 0 {
		return nil, errors.NewSchemaError("wine.NewProjector", unknown, "")
	}
	return p, nil
}

// Features returns the artifact feature names in model order.
func (p *Projector) Features() []string {
	return append([]string(nil), p.features...)
}

// Project returns a 1×k matrix holding the model inputs of s.
func (p *Projector) Project(s *Sample) (*mat.Dense, error) {
	full, err := s.Vector()
	if err != nil {
		return nil, err
	}
	row := make([]float64, len(p.index))
	for k, i := range p.index {
		row[k] = full[i]
	}
	return mat.NewDense(1, len(row), row), nil
}

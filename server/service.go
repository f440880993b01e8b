// Package server exposes a trained ridge model over HTTP.
package server

import (
	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/linear"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/2022bcs0010-jaasir/lab7/wine"
)

// Identity is echoed in every prediction response.
type Identity struct {
	Name   string
	RollNo string
}

// Service holds the model loaded at startup. It is never mutated after
// NewService returns, so handlers share it without locking.
type Service struct {
	model     *linear.Ridge
	projector *wine.Projector
	identity  Identity
}

// NewService restores the model from weights and checks that every feature
// it was trained on can be read from a prediction request.
func NewService(weights *model.ModelWeights, id Identity) (*Service, error) {
	ridge := linear.NewRidge()
	if err := ridge.ImportWeights(weights); err != nil {
		return nil, errors.Wrap(err, "import model weights")
	}
	projector, err := wine.NewProjector(ridge.FeatureNames())
	if err != nil {
		return nil, err
	}
	return &Service{model: ridge, projector: projector, identity: id}, nil
}

// Features returns the model's input columns in order.
func (s *Service) Features() []string {
	return s.projector.Features()
}

// Predict returns the rounded quality score of sample. Halves round away
// from zero. A score that is not finite or does not fit in an int is an error.
func (s *Service) Predict(sample *wine.Sample) (quality int, err error) {
	err = errors.SafeExecute("Service.Predict", func() error {
		row, err := s.projector.Project(sample)
		if err != nil {
			return err
		}
		pred, err := s.model.Predict(row)
		if err != nil {
			return err
		}
		quality, err = errors.RoundToInt("Service.Predict", pred.At(0, 0))
		return err
	})
	return quality, err
}

// Package trainer runs the end-to-end training pipeline: load the dataset,
// pick the most correlated features, fit a ridge model on a seeded split,
// evaluate it and persist the artifact and metrics.
package trainer

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/2022bcs0010-jaasir/lab7/config"
	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/dataset"
	"github.com/2022bcs0010-jaasir/lab7/linear"
	"github.com/2022bcs0010-jaasir/lab7/metrics"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/2022bcs0010-jaasir/lab7/pkg/log"
	"github.com/2022bcs0010-jaasir/lab7/preprocessing"
	"github.com/2022bcs0010-jaasir/lab7/runlog"
)

// Result summarises one training run.
type Result struct {
	Features     []string
	Correlations []float64 // |r| of Features, same order
	MSE          float64
	R2           float64
	RMSE         float64
	MAE          float64
	TrainSamples int
	TestSamples  int
	Checksum     string
	Model        *linear.Ridge
}

// metricsFile is the on-disk metrics record.
type metricsFile struct {
	MSE float64 `json:"MSE"`
	R2  float64 `json:"R2"`
}

// Run executes the pipeline described by cfg. Nothing is written unless
// fitting and evaluation succeed.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("trainer")
	start := time.Now()

	logger.Info("identity", "name", cfg.Server.Name, "roll_no", cfg.Server.RollNo)

	frame, err := dataset.LoadCSV(cfg.Dataset.Path, cfg.Training.Target)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		log.DatasetPathKey, cfg.Dataset.Path,
		log.SamplesKey, frame.Len(),
		log.FeaturesKey, len(frame.Features))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	selector := preprocessing.NewCorrelationSelector(cfg.Training.TopK, frame.Features)
	selected, err := selector.FitTransform(frame.X, frame.Y)
	if err != nil {
		return nil, errors.Wrap(err, "select features")
	}
	features := selector.Selected()
	scores := selector.Scores()
	correlations := make([]float64, 0, len(features))
	for _, j := range selector.SelectedIndices() {
		correlations = append(correlations, scores[j])
	}
	logger.Info("features selected",
		log.OperationKey, log.OperationSelect,
		log.FeatureNamesKey, features)

	split, err := dataset.TrainTestSplit(frame.Len(), cfg.Training.TestSize, cfg.Training.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := dataset.SubsetRows(selected, frame.Y, split.Train)
	xTest, yTest := dataset.SubsetRows(selected, frame.Y, split.Test)

	ridge := linear.NewRidge(
		linear.WithAlpha(cfg.Training.Alpha),
		linear.WithFitIntercept(true),
		linear.WithFeatureNames(features...),
	)
	if err := ridge.Fit(xTrain, yTrain); err != nil {
		return nil, errors.Wrap(err, "fit ridge")
	}
	logger.Debug("model fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.ModelNameKey, linear.ModelType,
		log.RegularizationKey, cfg.Training.Alpha,
		log.SamplesKey, len(split.Train))

	pred, err := ridge.Predict(xTest)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Evaluate(yTest, pred)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate")
	}

	weights, err := ridge.ExportWeights()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := model.SaveWeights(weights, cfg.Artifacts.Model); err != nil {
		return nil, err
	}
	logger.Info("model saved",
		log.OperationKey, log.OperationSave,
		log.ArtifactPathKey, cfg.Artifacts.Model,
		log.ChecksumKey, weights.Checksum)

	if err := writeMetrics(cfg.Artifacts.Metrics, report); err != nil {
		return nil, err
	}

	if cfg.Artifacts.CorrelationPlot != "" {
		if err := SaveCorrelationChart(cfg.Artifacts.CorrelationPlot, selector.Names(), scores, features); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Features:     features,
		Correlations: correlations,
		MSE:          report.MSE,
		R2:           report.R2,
		RMSE:         report.RMSE,
		MAE:          report.MAE,
		TrainSamples: len(split.Train),
		TestSamples:  len(split.Test),
		Checksum:     weights.Checksum,
		Model:        ridge,
	}

	if cfg.RunHistory.Path != "" {
		if err := recordRun(ctx, logger, cfg, res); err != nil {
			return nil, err
		}
	}

	logger.Info("training finished",
		log.PhaseKey, log.PhaseValidation,
		log.FeatureNamesKey, features,
		log.MSEKey, report.MSE,
		log.RMSEKey, report.RMSE,
		log.MAEKey, report.MAE,
		log.R2ScoreKey, report.R2,
		log.RandomSeedKey, cfg.Training.Seed,
		log.DurationMsKey, time.Since(start).Milliseconds())
	return res, nil
}

func writeMetrics(path string, report metrics.Report) error {
	data, err := json.MarshalIndent(metricsFile{MSE: report.MSE, R2: report.R2}, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encode metrics")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create metrics directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}

func recordRun(ctx context.Context, logger *slog.Logger, cfg *config.Config, res *Result) error {
	store, err := runlog.Open(cfg.RunHistory.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(ctx, runlog.Run{
		ModelType:    linear.ModelType,
		Features:     res.Features,
		Alpha:        cfg.Training.Alpha,
		Seed:         cfg.Training.Seed,
		MSE:          res.MSE,
		R2:           res.R2,
		RMSE:         res.RMSE,
		MAE:          res.MAE,
		TrainSamples: res.TrainSamples,
		TestSamples:  res.TestSamples,
		Checksum:     res.Checksum,
	})
	if err != nil {
		return err
	}
	logger.Debug("run recorded", "run_id", id, log.ArtifactPathKey, cfg.RunHistory.Path)
	return nil
}

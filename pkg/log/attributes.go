// Package log wires structured logging for the trainer and the prediction
// service on top of log/slog.
//
// The attribute keys below follow a hierarchical naming convention
// ("model.name", "data.samples") so that training runs and request logs can
// be filtered the same way.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of model, e.g. "Ridge".
	ModelNameKey = "model.name"

	// OperationKey is the operation being performed: fit, predict, select_features, ...
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or binary emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase: training, validation, inference.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	// FeatureNamesKey carries the ordered list of selected feature names.
	FeatureNamesKey = "data.feature_names"
	DatasetPathKey  = "data.path"
)

// Metrics and timing.
const (
	DurationMsKey = "perf.duration_ms"
	MSEKey        = "metrics.mse"
	RMSEKey       = "metrics.rmse"
	MAEKey        = "metrics.mae"
	R2ScoreKey    = "metrics.r2_score"
)

// Hyperparameters and reproducibility.
const (
	RegularizationKey = "hyperparams.regularization"
	RandomSeedKey     = "config.random_seed"
	ChecksumKey       = "model.checksum"
	ArtifactPathKey   = "model.artifact_path"
)

// Request context for the prediction service.
const (
	RequestIDKey = "http.request_id"
	StatusKey    = "http.status"
	PathKey      = "http.path"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationSelect  = "select_features"
	OperationLoad    = "load"
	OperationSave    = "save"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"
)

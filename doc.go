// Package lab7 trains a ridge regression model on the red wine-quality
// dataset and serves its predictions over HTTP.
//
// # Layout
//
//   - cmd/train: loads the dataset, keeps the five columns most correlated
//     with quality, fits linear.Ridge on a seeded 80/20 split and writes the
//     model artifact and metrics.
//   - cmd/serve: loads the artifact once and answers POST /predict and
//     GET /health.
//
// Both binaries read the same YAML configuration (package config), so the
// artifact the trainer writes is the one the service loads.
//
// # Quick Start
//
//	go run ./cmd/train -dataset dataset/winequality-red.csv
//	go run ./cmd/serve
//
//	curl -s localhost:8000/predict -d '{
//	  "fixed_acidity": 7.4, "volatile_acidity": 0.70, "citric_acid": 0.00,
//	  "residual_sugar": 1.9, "chlorides": 0.076, "free_sulfur_dioxide": 11,
//	  "total_sulfur_dioxide": 34, "density": 0.9978, "pH": 3.51,
//	  "sulphates": 0.56, "alcohol": 9.4}'
//
// # Model artifact
//
// The artifact (core/model.ModelWeights) is JSON. It stores the selected
// feature names next to the coefficients, so the service projects the
// 11-field request onto exactly the columns the model was trained on, and a
// sha256 checksum that is verified on load.
//
// # Error Handling
//
// Errors carry stack traces (cockroachdb/errors) and structured fields:
//
//	if err != nil {
//	    var dimErr *errors.DimensionError
//	    if errors.As(err, &dimErr) {
//	        // expected vs. got feature count
//	    }
//	}
package lab7

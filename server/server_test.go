package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/linear"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
	"fixed_acidity": 7.4, "volatile_acidity": 0.70, "citric_acid": 0.00,
	"residual_sugar": 1.9, "chlorides": 0.076, "free_sulfur_dioxide": 11,
	"total_sulfur_dioxide": 34, "density": 0.9978, "pH": 3.51,
	"sulphates": 0.56, "alcohol": 9.4
}`

var testIdentity = Identity{Name: "Mohamed Jaasir Subair", RollNo: "2022BCS0010"}

func init() {
	gin.SetMode(gin.TestMode)
}

func testWeights(features []string, coef []float64, intercept float64) *model.ModelWeights {
	w := &model.ModelWeights{
		ModelType:       linear.ModelType,
		Version:         linear.WeightsVersion,
		Coefficients:    coef,
		Intercept:       intercept,
		Features:        features,
		Hyperparameters: map[string]interface{}{"alpha": 0.5, "fit_intercept": true},
		IsFitted:        true,
	}
	w.Seal()
	return w
}

func newTestRouter(t *testing.T, w *model.ModelWeights, logBuf *bytes.Buffer) *gin.Engine {
	t.Helper()
	svc, err := NewService(w, testIdentity)
	require.NoError(t, err)
	return NewRouter(svc, zerolog.New(logBuf))
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{0.5}, 0), &logs)

	rec := doRequest(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPredict_HappyPath(t *testing.T) {
	var logs bytes.Buffer
	// 3.0 + 0.3*9.4 - 1.0*0.70 = 5.12
	w := testWeights([]string{"alcohol", "volatile acidity"}, []float64{0.3, -1.0}, 3.0)
	r := newTestRouter(t, w, &logs)

	rec := doRequest(r, http.MethodPost, "/predict", sampleBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Mohamed Jaasir Subair", resp.Name)
	assert.Equal(t, "2022BCS0010", resp.RollNo)
	assert.Equal(t, 5, resp.WineQuality)

	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"http.path":"/predict"`)
	assert.Contains(t, logs.String(), `"http.status":200`)
}

func TestPredict_RoundsHalfAwayFromZero(t *testing.T) {
	var logs bytes.Buffer
	w := testWeights([]string{"alcohol"}, []float64{1}, 0)
	r := newTestRouter(t, w, &logs)

	body := strings.Replace(sampleBody, `"alcohol": 9.4`, `"alcohol": 10.5`, 1)
	rec := doRequest(r, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 11, resp.WineQuality)
}

func TestPredict_BadRequests(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{0.5}, 0), &logs)

	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"alcohol": 9.4}`},
		{"null field", strings.Replace(sampleBody, `"pH": 3.51`, `"pH": null`, 1)},
		{"wrong type", strings.Replace(sampleBody, `"alcohol": 9.4`, `"alcohol": "high"`, 1)},
		{"malformed json", `{"alcohol": `},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestPredict_ZeroValuesAreAccepted(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"citric acid"}, []float64{2}, 5), &logs)

	// citric_acid is 0.00 in the sample
	rec := doRequest(r, http.MethodPost, "/predict", sampleBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wine_quality":5`)
}

func TestPredict_NonFinitePredictionIsServerError(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{1e10}, 0), &logs)

	body := strings.Replace(sampleBody, `"alcohol": 9.4`, `"alcohol": 1e300`, 1)
	rec := doRequest(r, http.MethodPost, "/predict", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "numerical instability")
	assert.Contains(t, logs.String(), `"ml.operation":"predict"`)
	assert.Contains(t, logs.String(), `"ml.phase":"inference"`)
}

func TestPredict_OutOfIntRangePredictionIsServerError(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{1}, 0), &logs)

	// finite, but beyond the int range once rounded
	body := strings.Replace(sampleBody, `"alcohol": 9.4`, `"alcohol": 1e20`, 1)
	rec := doRequest(r, http.MethodPost, "/predict", body)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "wine_quality")

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "numerical instability")
}

func TestRequestIDIsEchoed(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{0.5}, 0), &logs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), `"http.request_id":"abc-123"`)
}

func TestNewService_RejectsBadArtifacts(t *testing.T) {
	t.Run("unknown feature", func(t *testing.T) {
		_, err := NewService(testWeights([]string{"alcohol", "colour"}, []float64{1, 2}, 0), testIdentity)
		var se *errors.SchemaError
		require.True(t, errors.As(err, &se), "got %v", err)
		assert.Equal(t, []string{"colour"}, se.Missing)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		w := testWeights([]string{"alcohol"}, []float64{1}, 0)
		w.Intercept = 2
		_, err := NewService(w, testIdentity)
		assert.True(t, errors.Is(err, errors.ErrChecksumMismatch))
	})

	t.Run("not fitted", func(t *testing.T) {
		w := testWeights([]string{"alcohol"}, []float64{1}, 0)
		w.IsFitted = false
		_, err := NewService(w, testIdentity)
		assert.Error(t, err)
	})
}

func TestService_ConcurrentPredict(t *testing.T) {
	var logs bytes.Buffer
	svc, err := NewService(testWeights([]string{"alcohol", "sulphates"}, []float64{0.3, 1}, 2), testIdentity)
	require.NoError(t, err)
	r := NewRouter(svc, zerolog.New(zerolog.SyncWriter(&logs)))

	const n = 32
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		go func() {
			codes <- doRequest(r, http.MethodPost, "/predict", sampleBody).Code
		}()
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusOK, <-codes)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, testWeights([]string{"alcohol"}, []float64{0.5}, 0), &logs)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := New(addr, r)
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}

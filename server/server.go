package server

import (
	"context"
	"net/http"
	"time"

	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/2022bcs0010-jaasir/lab7/pkg/log"
	"github.com/2022bcs0010-jaasir/lab7/wine"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// ctxRequestID is the gin context key holding the request id.
const ctxRequestID = "request_id"

// PredictResponse is the body of a successful POST /predict.
type PredictResponse struct {
	Name        string `json:"name"`
	RollNo      string `json:"roll_no"`
	WineQuality int    `json:"wine_quality"`
}

// NewRouter builds the gin engine serving svc.
func NewRouter(svc *Service, access zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(access), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		access.Error().
			Str(log.RequestIDKey, c.GetString(ctxRequestID)).
			Interface("panic", recovered).
			Msg("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	r.GET("/health", health)
	r.POST("/predict", predictHandler(svc, access))
	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func predictHandler(svc *Service, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sample wine.Sample
		if err := c.ShouldBindJSON(&sample); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		quality, err := svc.Predict(&sample)
		if err != nil {
			var se *errors.SchemaError
			if errors.As(err, &se) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			_ = c.Error(err)
			logger.Error().
				Str(log.RequestIDKey, c.GetString(ctxRequestID)).
				Str(log.OperationKey, log.OperationPredict).
				Str(log.PhaseKey, log.PhaseInference).
				Strs(log.FeatureNamesKey, svc.Features()).
				Msg(err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, PredictResponse{
			Name:        svc.identity.Name,
			RollNo:      svc.identity.RollNo,
			WineQuality: quality,
		})
	}
}

// requestID reuses the caller's X-Request-ID or assigns a new uuid.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		if status >= http.StatusInternalServerError {
			ev = logger.Error()
		} else if status >= http.StatusBadRequest {
			ev = logger.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("error", c.Errors.String())
		}
		ev.Str(log.RequestIDKey, c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str(log.PathKey, c.FullPath()).
			Int(log.StatusKey, status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Server wraps an http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
}

// New returns a server listening on addr once Start is called.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "listen on %s", s.srv.Addr)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// initLogger configures the shared logger. The returned func releases the
// logstash connection, if one was opened.
func initLogger(cfg LogConfig) (func(), error) {
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return func() {}, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.LogstashAddr == "" {
		return func() {}, nil
	}
	conn, err := net.DialTimeout("tcp", cfg.LogstashAddr, 5*time.Second)
	if err != nil {
		logger.WithError(err).WithField("addr", cfg.LogstashAddr).Warn("Logstash unreachable, logging to stdout only")
		return func() {}, nil
	}
	logger.Hooks.Add(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "blog-api"})))
	return func() { conn.Close() }, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func afterRequestLogging(start time.Time, r *http.Request, status int, requestID string) {
	// Check if a request takes longer than 2 seconds
	duration := time.Since(start)

	entry := logger.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"duration":   duration,
		"remote_ip":  r.RemoteAddr,
		"request_id": requestID,
	})
	if duration > 2*time.Second {
		entry.Warn("Slow request detected")
	} else {
		entry.Info("Request completed")
	}
}

// requestLogging tags every request with an id and logs it once it completes.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() { afterRequestLogging(start, r, rec.status, requestID) }()
		next.ServeHTTP(rec, r)
	})
}

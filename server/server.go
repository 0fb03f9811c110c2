// Package server exposes the Destiin application over HTTP. Method routes follow the
// /api/method/<module>.<function> layout and wrap their results as {"message": result}.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avohilabs/destiin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	methodPrefix = "/api/method/"
	uploadPath   = methodPrefix + "web_page.upload_image"
	pagePath     = "/expense-claim"

	// DefaultShutdownTimeout bounds how long in-flight requests may take once shutdown starts.
	DefaultShutdownTimeout = 15 * time.Second
)

// Server routes HTTP requests to an App.
type Server struct {
	app             *destiin.App
	logger          *zap.Logger
	apiKeys         map[string]string
	shutdownTimeout time.Duration
	handler         http.Handler
}

// New creates a Server for app. API keys are read from the app configuration.
func New(app *destiin.App, options ...func(*Server) error) (*Server, error) {
	if app == nil {
		return nil, errors.New("app is nil")
	}
	s := &Server{
		app:             app,
		logger:          app.Logger,
		apiKeys:         app.Config.APIKeyPairs(),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, fmt.Errorf("applying option on server : %w", err)
		}
	}
	s.handler = withRequestID(withLogging(s.logger, s.routes()))
	return s, nil
}

// WithLogger sets the request logger. It defaults to the App logger.
func WithLogger(logger *zap.Logger) func(*Server) error {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		s.logger = logger
		return nil
	}
}

// WithShutdownTimeout sets how long Serve waits for in-flight requests after its context ends.
func WithShutdownTimeout(timeout time.Duration) func(*Server) error {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid shutdown timeout %s", timeout)
		}
		s.shutdownTimeout = timeout
		return nil
	}
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	getAllActivities := s.requireAPIKey(s.handleGetAllActivities)
	mux.HandleFunc("GET "+methodPrefix+"employee_activity.get_all_activities", getAllActivities)
	mux.HandleFunc("POST "+methodPrefix+"employee_activity.get_all_activities", getAllActivities)
	mux.HandleFunc("POST "+methodPrefix+"employee_activity.create_activity",
		s.requireAPIKey(s.method("create_activity API Error", func(ctx context.Context, data destiin.Payload) (any, error) {
			return s.app.CreateActivity(ctx, data)
		})))
	mux.HandleFunc("POST "+methodPrefix+"employee_activity.update_activity",
		s.requireAPIKey(s.method("update_booking_stage API Error", func(ctx context.Context, data destiin.Payload) (any, error) {
			return s.app.UpdateActivity(ctx, data)
		})))

	getAllBookings := s.requireAPIKey(s.method("get_all_bookings API Error", func(ctx context.Context, data destiin.Payload) (any, error) {
		return s.app.GetAllBookings(ctx, data)
	}))
	mux.HandleFunc("GET "+methodPrefix+"travel_bookings.get_all_bookings", getAllBookings)
	mux.HandleFunc("POST "+methodPrefix+"travel_bookings.get_all_bookings", getAllBookings)
	mux.HandleFunc("POST "+methodPrefix+"travel_bookings.create_booking",
		s.requireAPIKey(s.method("create_booking API Error", func(ctx context.Context, data destiin.Payload) (any, error) {
			return s.app.CreateBooking(ctx, data)
		})))
	mux.HandleFunc("POST "+methodPrefix+"travel_bookings.update_booking",
		s.requireAPIKey(s.method("update_booking API Error", func(ctx context.Context, data destiin.Payload) (any, error) {
			return s.app.UpdateBooking(ctx, data)
		})))

	mux.HandleFunc("POST "+uploadPath, s.handleUpload)
	mux.HandleFunc("GET "+pagePath, s.handleExpensePage)
	mux.Handle("GET "+destiin.FilesURLPrefix, http.StripPrefix(destiin.FilesURLPrefix, noDirListing(http.FileServer(http.Dir(s.app.FilesDir)))))

	mux.HandleFunc(methodPrefix, func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, methodPrefix)
		writeException(w, http.StatusNotFound, excNotFound, fmt.Sprintf("Method %s not found", name))
	})
	return mux
}

// method adapts a payload handler. Decoding and handler errors are written to the error log
// under title and returned as {"success": false, "error": ...} inside the envelope.
func (s *Server) method(title string, fn func(ctx context.Context, data destiin.Payload) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		data, err := decodePayload(w, r)
		if err == nil {
			var result any
			result, err = fn(ctx, data)
			if err == nil {
				writeMessage(w, result)
				return
			}
		}
		s.app.LogError(ctx, title, err)
		writeMessage(w, failure{Success: false, Error: err.Error()})
	}
}

func (s *Server) handleGetAllActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.app.GetAllActivities(r.Context())
	if err != nil {
		s.logger.Error("listing activities", zap.Error(err))
		writeException(w, http.StatusInternalServerError, excInternal, err.Error())
		return
	}
	writeMessage(w, activities)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	imageData, filename, err := uploadParams(w, r)
	if err != nil {
		writeException(w, http.StatusExpectationFailed, excValidation, err.Error())
		return
	}
	result, err := s.app.UploadReceipt(r.Context(), imageData, filename)
	if err != nil {
		if errors.Is(err, destiin.ErrValidation) {
			writeException(w, http.StatusExpectationFailed, excValidation, err.Error())
			return
		}
		s.logger.Error("uploading receipt", zap.Error(err))
		writeException(w, http.StatusInternalServerError, excInternal, err.Error())
		return
	}
	writeMessage(w, result)
}

// noDirListing answers 404 for directory paths instead of listing their content.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadTLSConfig loads a certificate and key for serving TLS next to plain HTTP.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("loading key pair %s %s: %w", certFile, keyFile, err)
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"http/1.1"},
	}, nil
}

// Serve serves HTTP on l until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("destiin service started", zap.Stringer("address", l.Addr()), zap.Int("pid", os.Getpid()))
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		s.logger.Info("destiin service stopped")
		return nil
	})
	return g.Wait()
}

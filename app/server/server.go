// Package server provides rest api for generating, saving and verifying sealed codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/qrseal/qrseal/app/alert"
	"github.com/qrseal/qrseal/app/sealer"
	"github.com/qrseal/qrseal/app/store"
)

//go:generate moq -out store_mock.go -fmt goimports . Store
//go:generate moq -out alerter_mock.go -fmt goimports . Alerter

// Config is a configuration for the server
type Config struct {
	Listen         string
	Version        string
	Users          []string // "name:bcrypt-hash" pairs for basic auth
	IPSalt         string   // secret for client ip hashing
	RateLimit      float64  // requests per second per client ip, 0 disables
	MaxContent     int      // max content length, in characters. Tokens over qr capacity are rejected on render
	MaxBody        int64    // max request body size, in bytes
	RequestTimeout time.Duration
	Protocol       string
}

// Server is a rest api with sealer and store
type Server struct {
	sealer   Sealer
	store    Store
	renderer Renderer
	alerter  Alerter
	users    map[string]string
	cfg      Config
}

// Sealer generates and verifies tokens
type Sealer interface {
	Generate(ctx context.Context, req sealer.GenerateReq) (*sealer.Generated, error)
	Verify(ctx context.Context, input string) (*sealer.Verification, error)
	Ready() error
}

// Store keeps saved codes and verification log
type Store interface {
	Save(ctx context.Context, code *store.Code) error
	List(ctx context.Context, owner string) ([]store.Code, error)
	SetStatus(ctx context.Context, owner, id string, status store.Status) error
	IncScans(ctx context.Context, id string) (int, error)
	LogVerification(ctx context.Context, ev *store.VerificationEvent) error
	ListVerifications(ctx context.Context, owner string, limit int) ([]store.VerificationEvent, error)
	VerificationStats(ctx context.Context, owner string) (map[string]int, error)
}

// Renderer draws a token as QR image data url
type Renderer interface {
	DataURL(token string) (string, error)
}

// Alerter reports tampered codes
type Alerter interface {
	Send(ctx context.Context, ev alert.Event) error
}

// New makes Server. Alerter may be nil.
func New(sl Sealer, st Store, rn Renderer, al Alerter, cfg Config) (*Server, error) {
	users, err := parseUsers(cfg.Users)
	if err != nil {
		return nil, fmt.Errorf("can't parse users: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.MaxContent == 0 {
		cfg.MaxContent = 700 // sealed ascii content of this length fits a qr code at the highest correction level
	}
	if cfg.MaxBody == 0 {
		cfg.MaxBody = 64 * 1024
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.IPSalt == "" {
		return nil, errors.New("ip salt is required")
	}
	return &Server{sealer: sl, store: st, renderer: rn, alerter: al, users: users, cfg: cfg}, nil
}

// Run the listener and request's router, activate rest server
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] activate rest server on %s", s.cfg.Listen)

	httpServer := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] failed to shutdown http server, %v", err)
		}
	}()

	err := httpServer.ListenAndServe()
	log.Printf("[WARN] http server terminated, %s", err)

	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(rest.Recoverer(log.Default()), rest.RealIP, HashedIP(s.cfg.IPSalt))
	router.Use(rest.Throttle(1000), Timeout(s.cfg.RequestTimeout))
	router.Use(rest.AppInfo("qrseal", "qrseal", s.cfg.Version), rest.Ping, rest.SizeLimit(s.cfg.MaxBody))
	router.Use(SecurityHeaders(s.cfg.Protocol), StripSlashes)
	if s.cfg.RateLimit > 0 {
		lmt := tollbooth.NewLimiter(s.cfg.RateLimit, nil)
		lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
		lmt.SetMessageContentType("application/json; charset=utf-8")
		lmt.SetMessage(`{"error":"rate_limited","message":"too many requests"}`)
		router.Use(tollbooth.HTTPMiddleware(lmt))
	}

	router.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /api/\n"))
	})

	api := router.Mount("/api/v1")
	api.Use(Logger(log.Default()))
	api.HandleFunc("GET /params", s.paramsCtrl)
	api.HandleFunc("POST /generate", s.generateCtrl)
	api.HandleFunc("POST /verify", s.verifyCtrl)

	auth := api.Group()
	auth.Use(s.authMiddleware)
	auth.HandleFunc("POST /codes", s.createCodeCtrl)
	auth.HandleFunc("GET /codes", s.listCodesCtrl)
	auth.HandleFunc("DELETE /codes/{id}", s.archiveCodeCtrl)
	auth.HandleFunc("GET /verifications", s.listVerificationsCtrl)
	auth.HandleFunc("GET /stats", s.statsCtrl)

	return router
}

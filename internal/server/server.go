package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bookmart/internal/detail"
	"bookmart/internal/ratelimit"
	"bookmart/internal/session"
	"bookmart/internal/util"
	"bookmart/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	Books    detail.BookService
	Carts    detail.CartService
	Sessions session.Store
	Redis    *redis.Client

	VisitRateLimitPerMinute   int
	SessionRateLimitPerMinute int

	// CooldownSeconds is the add-to-cart window for new visits; defaults
	// to detail.DefaultCooldownSeconds.
	CooldownSeconds int
	// CooldownInterval overrides the countdown tick in tests.
	CooldownInterval time.Duration
	// VisitTTL evicts visits abandoned without an explicit teardown.
	VisitTTL time.Duration
}

type visitEntry struct {
	ctrl     *detail.Controller
	lastSeen time.Time
}

// Server exposes the detail-page JSON API. Each visit maps to one
// detail.Controller owned by this process.
type Server struct {
	books    detail.BookService
	carts    detail.CartService
	sessions session.Store
	mux      *http.ServeMux

	visitLimiter   *ratelimit.FixedWindowLimiter
	sessionLimiter *ratelimit.FixedWindowLimiter

	cooldownSeconds  int
	cooldownInterval time.Duration
	visitTTL         time.Duration

	mu     sync.Mutex
	visits map[string]*visitEntry

	janitorStop chan struct{}
	janitorOnce sync.Once
}

// New constructs the server with routes configured and the visit janitor
// running.
func New(cfg Config) (*Server, error) {
	visitLimit := cfg.VisitRateLimitPerMinute
	if visitLimit <= 0 {
		visitLimit = 60
	}
	sessionLimit := cfg.SessionRateLimitPerMinute
	if sessionLimit <= 0 {
		sessionLimit = 10
	}
	visitLimiter, err := ratelimit.New(cfg.Redis, "storefront:ratelimit:visit", visitLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init visit limiter: %w", err)
	}
	sessionLimiter, err := ratelimit.New(cfg.Redis, "storefront:ratelimit:session", sessionLimit, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("init session limiter: %w", err)
	}
	visitTTL := cfg.VisitTTL
	if visitTTL <= 0 {
		visitTTL = 30 * time.Minute
	}
	s := &Server{
		books:            cfg.Books,
		carts:            cfg.Carts,
		sessions:         cfg.Sessions,
		mux:              http.NewServeMux(),
		visitLimiter:     visitLimiter,
		sessionLimiter:   sessionLimiter,
		cooldownSeconds:  cfg.CooldownSeconds,
		cooldownInterval: cfg.CooldownInterval,
		visitTTL:         visitTTL,
		visits:           make(map[string]*visitEntry),
		janitorStop:      make(chan struct{}),
	}
	s.routes()
	go s.janitor()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("storefront",
		util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

// Close stops the janitor and tears down every live visit.
func (s *Server) Close() {
	s.janitorOnce.Do(func() { close(s.janitorStop) })
	s.mu.Lock()
	entries := make([]*visitEntry, 0, len(s.visits))
	for id, e := range s.visits {
		entries = append(entries, e)
		delete(s.visits, id)
	}
	s.mu.Unlock()
	for _, e := range entries {
		e.ctrl.Close()
	}
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/session", s.handleSession)
	s.mux.HandleFunc("/api/visits", s.handleVisits)
	s.mux.HandleFunc("/api/visits/", s.handleVisitByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionRequest struct {
	CartID string `json:"cartId"`
}

// handleSession issues a bearer token for a cart id. The real login flow
// lives in the auth service; this is the boundary the storefront owns.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.sessionLimiter, "too many session requests") {
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CartID) == "" {
		writeError(w, http.StatusBadRequest, "cartId required")
		return
	}
	token, err := s.sessions.NewSession(r.Context(), req.CartID)
	if err != nil {
		slog.Error("issue session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not issue session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type visitRequest struct {
	BookID string `json:"bookId"`
}

// handleVisits creates one detail-page visit: a controller loaded with the
// requested book. A book that does not resolve never leaves a visit behind.
func (s *Server) handleVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.visitLimiter, "too many visit requests") {
		return
	}
	var req visitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		writeError(w, http.StatusBadRequest, "bookId required")
		return
	}

	ctrl := detail.New(detail.Config{
		Books:            s.books,
		Carts:            s.carts,
		Logger:           util.LoggerFromContext(r.Context()),
		CooldownSeconds:  s.cooldownSeconds,
		CooldownInterval: s.cooldownInterval,
	})
	if err := ctrl.Load(r.Context(), req.BookID); err != nil {
		ctrl.Close()
		writeLoadError(w, err)
		return
	}

	visitID := uuid.NewString()
	s.mu.Lock()
	s.visits[visitID] = &visitEntry{ctrl: ctrl, lastSeen: time.Now()}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"visitId": visitID,
		"view":    ctrl.ViewState(),
	})
}

func (s *Server) handleVisitByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/visits/")
	visitID, action, _ := strings.Cut(rest, "/")
	if visitID == "" {
		writeError(w, http.StatusNotFound, "visit not found")
		return
	}
	ctrl, ok := s.visit(visitID)
	if !ok {
		writeError(w, http.StatusNotFound, "visit not found")
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"view": ctrl.ViewState()})
		case http.MethodDelete:
			s.removeVisit(visitID)
			ctrl.Close()
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w)
		}
	case "book":
		s.handleSetBook(w, r, visitID, ctrl)
	case "quantity":
		s.handleQuantity(w, r, ctrl)
	case "cart":
		s.handleAddToCart(w, r, ctrl)
	case "checkout":
		s.handleCheckout(w, r, ctrl)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleSetBook navigates the visit to another book. A failed load is fatal
// for the visit, mirroring the page redirecting to its not-found view.
func (s *Server) handleSetBook(w http.ResponseWriter, r *http.Request, visitID string, ctrl *detail.Controller) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req visitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.BookID) == "" {
		writeError(w, http.StatusBadRequest, "bookId required")
		return
	}
	if err := ctrl.SetBookID(r.Context(), req.BookID); err != nil {
		s.removeVisit(visitID)
		ctrl.Close()
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": ctrl.ViewState()})
}

type quantityRequest struct {
	Value string `json:"value,omitempty"`
	Op    string `json:"op,omitempty"`
}

func (s *Server) handleQuantity(w http.ResponseWriter, r *http.Request, ctrl *detail.Controller) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req quantityRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp := map[string]any{}
	switch req.Op {
	case "increment":
		resp["quantity"] = ctrl.IncrementQuantity()
	case "decrement":
		resp["quantity"] = ctrl.DecrementQuantity()
	case "":
		result, qty := ctrl.SetQuantityText(req.Value)
		resp["quantity"] = qty
		if result == detail.SetClamped {
			resp["warning"] = "requested quantity exceeds stock"
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown quantity op")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAddToCart pushes the current selection through the throttler. A
// trigger landing inside the cooldown window is discarded, not queued, and
// reported as added=false.
func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request, ctrl *detail.Controller) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cartID, found, err := s.sessions.CartID(r.Context(), token)
	if err != nil {
		slog.Error("resolve session failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not resolve session")
		return
	}
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	accepted, err := ctrl.AddToCart(r.Context(), cartID)
	view := ctrl.ViewState()
	if errors.Is(err, detail.ErrNoBook) {
		writeError(w, http.StatusConflict, "no book loaded")
		return
	}
	if err != nil {
		// The cooldown keeps running; it is tied to the attempt, not the
		// outcome.
		util.LoggerFromContext(r.Context()).Warn("add to cart failed", "book_id", view.BookID, "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"added":           false,
			"cooldownSeconds": view.CooldownSeconds,
			"error":           "could not add to cart",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":           accepted,
		"cooldownSeconds": view.CooldownSeconds,
	})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request, ctrl *detail.Controller) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	order, err := ctrl.Checkout()
	if err != nil {
		writeError(w, http.StatusConflict, "no book loaded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"redirect": "/checkout",
		"order":    order,
	})
}

// visit returns the controller for a live visit and refreshes its idle clock.
func (s *Server) visit(id string) (*detail.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.visits[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.ctrl, true
}

func (s *Server) removeVisit(id string) {
	s.mu.Lock()
	delete(s.visits, id)
	s.mu.Unlock()
}

// janitor evicts visits abandoned without an explicit teardown so their
// cooldown tickers cannot outlive the page they belonged to.
func (s *Server) janitor() {
	sweep := s.visitTTL / 2
	if sweep < time.Second {
		sweep = time.Second
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()
	for {
		select {
		case <-s.janitorStop:
			return
		case <-ticker.C:
			s.sweepIdleVisits(time.Now())
		}
	}
}

func (s *Server) sweepIdleVisits(now time.Time) {
	var expired []*visitEntry
	s.mu.Lock()
	for id, entry := range s.visits {
		if now.Sub(entry.lastSeen) > s.visitTTL {
			expired = append(expired, entry)
			delete(s.visits, id)
		}
	}
	s.mu.Unlock()
	for _, entry := range expired {
		entry.ctrl.Close()
	}
	if len(expired) > 0 {
		slog.Info("evicted idle visits", "count", len(expired))
	}
}

func writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBookNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":    "book not found",
			"redirect": "/404",
		})
		return
	}
	writeJSON(w, http.StatusBadGateway, map[string]string{
		"error":    "book service unavailable",
		"redirect": "/404",
	})
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

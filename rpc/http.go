package rpc

import (
	"bytes"
	"crypto/subtle"
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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"synthd/engine"
	"synthd/observability"
	"synthd/observability/logging"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB

	writeRequestsPerMinute = 60.0
	writeBurst             = 10
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
	codeHealthFactor   = -32030
	codeLiquidation    = -32031
)

// Server exposes the collateral engine over JSON-RPC 2.0. Write methods
// require bearer-token authentication and are rate limited per client.
type Server struct {
	engine *engine.Engine
	logger *slog.Logger

	authToken string

	mu       sync.Mutex
	visitors map[string]*rate.Limiter
}

// NewServer constructs a server around the engine. An empty authToken
// disables all write methods rather than leaving them open.
func NewServer(eng *engine.Engine, authToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    eng,
		logger:    logger,
		authToken: strings.TrimSpace(authToken),
		visitors:  make(map[string]*rate.Limiter),
	}
}

// Router assembles the HTTP surface: the JSON-RPC endpoint plus a health
// probe, instrumented for tracing.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodPost, "/", otelhttp.NewHandler(http.HandlerFunc(s.handle), "synthd.rpc"))
	return r
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	requestID := uuid.NewString()
	recorder.Header().Set("Content-Type", "application/json")
	recorder.Header().Set("X-Request-Id", requestID)

	reader := http.MaxBytesReader(recorder, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(recorder, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(recorder, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(recorder, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(recorder, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(recorder, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	s.dispatch(recorder, r, req)

	observability.ModuleMetrics().Observe(req.Method, recorder.status, time.Since(start))
	s.logger.Info("rpc request",
		slog.String("requestId", requestID),
		slog.String("method", req.Method),
		slog.Int("status", recorder.status),
		slog.Duration("duration", time.Since(start)),
	)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	switch req.Method {
	case "synth_depositCollateral", "synth_mintDebt", "synth_redeemCollateral",
		"synth_burnDebt", "synth_depositCollateralAndMintDebt",
		"synth_redeemCollateralForDebt", "synth_liquidate":
		if authErr := s.requireAuth(r); authErr != nil {
			s.logger.Warn("rpc auth rejected",
				slog.String("method", req.Method),
				logging.MaskField("authorization", r.Header.Get("Authorization")),
			)
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		if !s.allowWrite(r) {
			observability.ModuleMetrics().RecordThrottle("rate_limit")
			writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "write rate limit exceeded", nil)
			return
		}
	}

	switch req.Method {
	case "synth_depositCollateral":
		s.handleDepositCollateral(w, r, req)
	case "synth_mintDebt":
		s.handleMintDebt(w, r, req)
	case "synth_redeemCollateral":
		s.handleRedeemCollateral(w, r, req)
	case "synth_burnDebt":
		s.handleBurnDebt(w, r, req)
	case "synth_depositCollateralAndMintDebt":
		s.handleDepositAndMint(w, r, req)
	case "synth_redeemCollateralForDebt":
		s.handleRedeemForDebt(w, r, req)
	case "synth_liquidate":
		s.handleLiquidate(w, r, req)
	case "synth_getCollateralAssets":
		s.handleGetCollateralAssets(w, r, req)
	case "synth_getDebtToken":
		s.handleGetDebtToken(w, r, req)
	case "synth_getPriceFeed":
		s.handleGetPriceFeed(w, r, req)
	case "synth_getPosition":
		s.handleGetPosition(w, r, req)
	case "synth_getCollateral":
		s.handleGetCollateral(w, r, req)
	case "synth_getDebt":
		s.handleGetDebt(w, r, req)
	case "synth_getAccountCollateralValue":
		s.handleGetAccountCollateralValue(w, r, req)
	case "synth_getHealthFactor":
		s.handleGetHealthFactor(w, r, req)
	case "synth_getUsdValue":
		s.handleGetUsdValue(w, r, req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
	}
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

func (s *Server) allowWrite(r *http.Request) bool {
	id := clientID(r)
	s.mu.Lock()
	limiter, ok := s.visitors[id]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(writeRequestsPerMinute/60.0), writeBurst)
		s.visitors[id] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

func clientID(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if comma := strings.IndexByte(ip, ','); comma > 0 {
			ip = ip[:comma]
		}
		if parsed := net.ParseIP(strings.TrimSpace(ip)); parsed != nil {
			return parsed.String()
		}
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

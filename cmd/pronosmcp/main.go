package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/omarshaarawi/pronos/internal/api/export"
	"github.com/omarshaarawi/pronos/internal/archive"
	"github.com/omarshaarawi/pronos/internal/config"
	"github.com/omarshaarawi/pronos/internal/repository/memory"
	"github.com/omarshaarawi/pronos/internal/service"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Error running MCP server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		stdio      = flag.Bool("stdio", false, "serve MCP over stdin/stdout instead of HTTP")
		allowRuns  = flag.Bool("allow-runs", true, "expose the run_pipeline tool")
		authHeader = flag.String("auth-header", "X-API-Key", "HTTP header to read the API key from")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.NewMCP()
	if err != nil {
		return err
	}

	store := archive.NewStore(cfg.Pipeline.DataDir)
	t := &tools{archive: service.NewArchiveService(store, memory.NewRepository(cfg.Pipeline.CacheTTL))}
	if *allowRuns {
		exportAPI := export.NewAPI(export.NewClient(cfg.Pipeline.SourceDir))
		t.pipeline = service.NewPipelineService(exportAPI, store, cfg.Pipeline)
	}
	server, registry := newServer(t, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *stdio {
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", withAuth(cfg.MCP.APIKey, *authHeader, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	mux.HandleFunc("/tools", withAuth(cfg.MCP.APIKey, *authHeader, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))
	mux.HandleFunc(cfg.MCP.Path, withAuth(cfg.MCP.APIKey, *authHeader, handler.ServeHTTP))

	srv := &http.Server{Addr: cfg.MCP.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully...")
		srv.Shutdown(context.Background())
	}()

	slog.Info("MCP HTTP server listening", "addr", cfg.MCP.Addr, "path", cfg.MCP.Path, "auth", cfg.MCP.APIKey != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// withAuth checks the API key in header, or a bearer token. An empty apiKey
// disables the check.
func withAuth(apiKey, header string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" {
			next(w, r)
			return
		}
		key := strings.TrimSpace(r.Header.Get(header))
		if key == "" {
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				key = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next(w, r)
	}
}

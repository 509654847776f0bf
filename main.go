// Command tilekingdoms serves Tile Kingdoms matches.
//
// Two modes are available:
//  1. "server" (default) runs the REST API, the /ws watcher feed and an /mcp endpoint
//  2. "stdio-mcp" exposes the game tools over MCP stdio, backed by an external
//     API on localhost:8080 or an internal one on a loopback port
//
// -default-config picks the ruleset used when a session is created without
// one; -seed makes every new match replayable.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/tilekingdoms/api"
	"github.com/wricardo/mcp-training/tilekingdoms/game/config"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
	"github.com/wricardo/mcp-training/tilekingdoms/game/session"
	"github.com/wricardo/mcp-training/tilekingdoms/transport/mcp"
	"github.com/wricardo/mcp-training/tilekingdoms/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Kingdoms Server"
)

// externalAPI is checked by stdio-mcp before it starts its own listener
const externalAPI = "http://localhost:8080"

var (
	port          = flag.Int("port", 8080, "HTTP server port")
	host          = flag.String("host", "localhost", "HTTP server host")
	configDir     = flag.String("config-dir", envOr("CONFIG_DIR", "configs"), "Directory containing rulesets (.json/.yaml)")
	defaultConfig = flag.String("default-config", os.Getenv("TK_DEFAULT_CONFIG"), "Ruleset used when a session is created without a config id")
	seed          = flag.Int64("seed", 0, "Base seed for new matches; match n uses seed+n (0 = random)")
	debug         = flag.Bool("debug", false, "Enable debug logging")
	sessionTTL    = flag.Duration("session-ttl", 24*time.Hour, "Remove matches idle for longer than this")
	version       = flag.Bool("version", false, "Show version information")
	ngrokEnabled  = flag.Bool("ngrok", false, "Expose the server through an ngrok tunnel")
	ngrokAuth     = flag.String("ngrok-auth", "", "Ngrok auth token (or NGROK_AUTHTOKEN)")
	ngrokDomain   = flag.String("ngrok-domain", "", "Reserved ngrok domain (optional)")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Modes:\n")
		fmt.Fprintf(out, "  server, http            REST API, /ws watcher feed and /mcp endpoint (default)\n")
		fmt.Fprintf(out, "  stdio-mcp, mcp-stdio, mcp  MCP stdio server for agents\n")
		fmt.Fprintf(out, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s -default-config duel            # two-seat ruleset for unnamed sessions\n", os.Args[0])
		fmt.Fprintf(out, "  %s -seed 42                        # replayable tile order and AI choices\n", os.Args[0])
		fmt.Fprintf(out, "  %s -config-dir ./rulesets -port 9090\n", os.Args[0])
		fmt.Fprintf(out, "  %s -default-config party mcp       # agents play the five-seat ruleset\n", os.Args[0])
		fmt.Fprintf(out, "\nWatch a match:  ws://localhost:8080/ws?session=<id>  (send {\"action\":\"resync\"} to replay the board)\n")
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s, config-dir: %s)", AppName, Version, mode, *configDir)
	if *seed != 0 {
		log.Printf("Seeded matches: base seed %d", *seed)
	}

	gameService, err := initializeServices()
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(gameService)
	case "server", "http":
		runHTTPServer(gameService)
	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices loads rulesets, applies -default-config and -seed, and
// starts the idle-session sweeper.
func initializeServices() (service.GameService, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if *defaultConfig != "" {
		if err := configManager.SetDefault(*defaultConfig); err != nil {
			return nil, fmt.Errorf("default config %q: %w", *defaultConfig, err)
		}
		log.Printf("Default ruleset: %s", *defaultConfig)
	}

	var opts []session.Option
	if *seed != 0 {
		opts = append(opts, session.WithBaseSeed(*seed))
	}
	sessionManager := session.NewManager(opts...)

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(sessionManager, *sessionTTL)

	return gameService, nil
}

// sessionCleanupRoutine removes matches idle for longer than maxAge
func sessionCleanupRoutine(manager *session.Manager, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
			log.Printf("Cleaned up %d idle matches (%d active)", removed, manager.Count())
		}
	}
}

// newRouter mounts the API and watcher feed at / and the MCP bridge at /mcp
func newRouter(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(gameService, hub))
	mux.Handle("/mcp", mcpHandler(mcp.NewClient(baseURL).GetMCPServer()))
	return mux
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpServer.HandleMessage(r.Context(), body)
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// runHTTPServer serves until SIGINT/SIGTERM, optionally mirrored over ngrok
func runHTTPServer(gameService service.GameService) {
	hub := websocket.NewHub()
	go hub.Run()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	router := newRouter(gameService, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		logEndpoints("http://"+addr, "ws://"+addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if tunnelRequested() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveTunnel(ctx, router)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

func logEndpoints(httpBase, wsBase string) {
	log.Printf("  REST API:     %s/api", httpBase)
	log.Printf("  Watch feed:   %s/ws?session=<session_id>", wsBase)
	log.Printf("  MCP endpoint: %s/mcp", httpBase)
}

// tunnelRequested reports -ngrok or NGROK_ENABLED=true|1
func tunnelRequested() bool {
	if *ngrokEnabled {
		return true
	}
	v := os.Getenv("NGROK_ENABLED")
	return v == "true" || v == "1"
}

// tunnelSettings resolves the auth token and domain from flags, then env
func tunnelSettings() (token, domain string) {
	token = *ngrokAuth
	if token == "" {
		token = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	domain = *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}
	return token, domain
}

// serveTunnel mirrors handler on a public ngrok URL until ctx is cancelled
func serveTunnel(ctx context.Context, handler http.Handler) {
	token, domain := tunnelSettings()
	if token == "" {
		log.Println("WARNING: ngrok requested but no auth token (use -ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	endpoint := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using ngrok domain: %s", domain)
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(token))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	url := tun.URL()
	log.Printf("Ngrok tunnel established: %s", url)
	logEndpoints(url, "wss://"+strings.TrimPrefix(url, "https://"))

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// externalAPIAvailable checks the health endpoint of a running server
func externalAPIAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and
// returns its base URL
func startInternalAPI(gameService service.GameService) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	return "http://" + listener.Addr().String(), nil
}

// runStdioMCP serves MCP over stdio against an external or internal API
func runStdioMCP(gameService service.GameService) {
	baseURL := externalAPI
	if externalAPIAvailable(externalAPI) {
		log.Printf("Using external API server at %s", externalAPI)
	} else {
		var err error
		if baseURL, err = startInternalAPI(gameService); err != nil {
			log.Fatalf("Failed to start internal API: %v", err)
		}
		log.Printf("Started internal API server at %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Println("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}

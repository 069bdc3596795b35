// Command scrabble-duel starts the Scrabble duel server.
//
// It supports two modes:
//  1. "serve" (default) runs the HTTP server exposing the REST API, the
//     WebSocket hub and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server against a running API, or an
//     internal one when none answers
//
// Every flag overrides the matching environment variable. A .env file in
// the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/scrabble-duel/api"
	"github.com/wricardo/scrabble-duel/game/config"
	"github.com/wricardo/scrabble-duel/game/dictionary"
	"github.com/wricardo/scrabble-duel/game/history"
	"github.com/wricardo/scrabble-duel/game/placement"
	"github.com/wricardo/scrabble-duel/game/service"
	"github.com/wricardo/scrabble-duel/game/session"
	"github.com/wricardo/scrabble-duel/telemetry"
	"github.com/wricardo/scrabble-duel/transport/mcp"
	"github.com/wricardo/scrabble-duel/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Scrabble Duel Server"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("exiting")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "scrabble-duel",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "console or json"},
			&cli.BoolFlag{Name: "debug", Usage: "Shortcut for --log-level debug"},
			&cli.StringFlag{Name: "dictionary-dir", Usage: "Directory of extra dictionaries"},
			&cli.StringFlag{Name: "history-backend", Usage: "sqlite or file"},
			&cli.StringFlag{Name: "database", Usage: "SQLite database path"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "API to proxy; an internal one starts if it does not answer"},
				},
				Action: runMCP,
			},
		},
	}
}

// loadConfig reads the environment then applies the flags that were set
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("dictionary-dir") {
		cfg.DictionaryDir = cmd.String("dictionary-dir")
	}
	if cmd.IsSet("history-backend") {
		cfg.HistoryBackend = cmd.String("history-backend")
	}
	if cmd.IsSet("database") {
		cfg.DatabasePath = cmd.String("database")
	}
	if cmd.IsSet("ngrok") {
		cfg.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.NgrokDomain = cmd.String("ngrok-domain")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// setupLogging configures the global logger. Logs always go to stderr so
// the stdio MCP transport keeps stdout to itself.
func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

// stack is the wired application
type stack struct {
	handler http.Handler
	service service.GameService
	history history.Store
}

func (s *stack) Close() error {
	return s.history.Close()
}

func openHistory(cfg config.Config) (history.Store, error) {
	if cfg.HistoryBackend == config.BackendFile {
		return history.NewFileRecorder(cfg.HistoryDir)
	}
	return history.OpenSQLite(cfg.DatabasePath)
}

// newStack wires dictionaries, history, tokens, the hub and the game
// service behind the REST router
func newStack(cfg config.Config) (*stack, error) {
	dictionaries, err := dictionary.NewManager(cfg.DictionaryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create dictionary manager: %w", err)
	}

	store, err := openHistory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history: %w", cfg.HistoryBackend, err)
	}

	auth, err := api.NewAuth(cfg.TokenSecret)
	if err != nil {
		store.Close()
		return nil, err
	}
	if cfg.TokenSecret == "" {
		log.Warn().Msg("TOKEN_SECRET is unset; player tokens will not survive a restart")
	}

	hub := websocket.NewHub(auth)
	gameService := service.NewGameService(service.Dependencies{
		Sessions:          session.NewManager(),
		Dictionaries:      dictionaries,
		Validator:         placement.NewValidator(dictionaries),
		Generator:         placement.NewGenerator(dictionaries, placement.DefaultLimit),
		Recorder:          store,
		History:           store,
		Notifier:          hub,
		DefaultDictionary: cfg.DefaultDictionary,
		DisconnectGrace:   cfg.DisconnectGrace,
	})
	websocket.NewDispatcher(hub, gameService)

	return &stack{
		handler: api.NewServer(gameService, hub, auth),
		service: gameService,
		history: store,
	}, nil
}

// localURL is the address the in-process MCP client reaches the API on
func localURL(cfg config.Config) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(cfg.Port))
}

// withMCP mounts the MCP endpoint next to the API
func withMCP(apiHandler http.Handler, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)
	mux := http.NewServeMux()
	mux.Handle("/", apiHandler)
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpClient.GetMCPServer()))
	return mux
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Msg("starting " + AppName)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	app, err := newStack(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	handler := withMCP(app.handler, localURL(cfg))
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).
			Str("api", "/api").
			Str("websocket", "/ws?token=<token>").
			Str("mcp", "/mcp").
			Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.NgrokEnabled {
		go serveNgrok(ctx, cfg, handler)
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}

// serveNgrok exposes handler through a tunnel until ctx is done
func serveNgrok(ctx context.Context, cfg config.Config, handler http.Handler) {
	tunnel := ngrokConfig.HTTPEndpoint()
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuthtoken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")
	go func() {
		<-ctx.Done()
		tun.Close()
	}()
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
}

// apiAvailable reports whether an API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(baseURL, "/") + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runMCP serves MCP over stdio. It reuses the API at --api-url and falls
// back to an internal server on a loopback port.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	baseURL := cmd.String("api-url")
	if apiAvailable(baseURL) {
		log.Info().Str("url", baseURL).Msg("using external API server")
	} else {
		app, err := newStack(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		httpServer := &http.Server{Handler: app.handler}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("started internal API server")
	}

	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}

// Package vellum provides a small content-management web application with
// Lua hook support, SQLite storage, and optional knowledge-graph publishing.
// It is designed to be decoupled from any particular binary and provides
// options and handlers for building self-hosted publishing tools.
//
// The core functionality includes:
//   - HTTP server with a declarative route table and middleware chain
//   - Lua-based hook system for rewriting content on save and render
//   - SQLite database storage for pages, users, sessions, and assets
//   - Policy-based access control for admin surfaces
//   - RSS feed and sitemap generation
//   - NATS-backed knowledge-graph publishing for page entities
package vellum

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vellum-ws/vellum/domain"
	"github.com/vellum-ws/vellum/graph"
	"github.com/vellum-ws/vellum/listener"
)

// Repository defines the methods consumed by the application to interact with
// the SQLite backend. It composes the per-concern repository interfaces so a
// single implementation can back the whole application.
type Repository interface {
	domain.PageRepository
	domain.UserRepository
	domain.SessionRepository
	domain.AssetRepository
	domain.HookRepository
	domain.LogRepository
	domain.SiteRepository
	Close() error
}

// HookService runs the enabled Lua hooks against a page. Implementations
// return the rewritten page; a nil service disables hooks entirely.
type HookService interface {
	// OnSave runs the save hooks before a page is persisted.
	OnSave(page *domain.Page) (*domain.Page, error)
	// OnRender runs the render hooks before a page is shown.
	OnRender(page *domain.Page) (*domain.Page, error)
	// Reload rebuilds hook runtimes from the repository, picking up code changes.
	Reload() error
}

// App is the main struct that orchestrates the application: routing,
// persistence, hooks, graph publishing, and logging.
type App struct {
	server         *http.Server
	ConfigDir      string               // The configuration directory
	Config         *Config              // The server configuration (separate from the site settings in the DB)
	Repo           Repository           // DB Repository Interface
	Logger         *slog.Logger         // Structured logger mirror for persisted log rows
	Hooks          HookService          // Lua hook runner, nil disables hooks
	Graph          *graph.Client        // Graph publisher, nil disables publishing
	Policy         *Policy              // Access policy deciding which routes need an admin session
	Templates      *template.Template   // Parsed template set
	DBWriteChannel chan domain.Log      // DB Write Channel
	OnLog          func(domain.Log) error // Function to be ran on each log - used by embedding applications
	Addr           string               // IP Address of the server
	Port           string               // Port of the server
}

// New creates a new App instance with default configuration and applies any
// provided options.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Logger:         slog.Default(),
		Policy:         DefaultPolicy(),
		DBWriteChannel: make(chan domain.Log, 10),
	}
	if err := app.WithOptions(options...); err != nil {
		return nil, err
	}
	if app.Templates == nil {
		templates, err := DefaultTemplates()
		if err != nil {
			return nil, fmt.Errorf("parsing default templates : %w", err)
		}
		app.Templates = templates
	}
	return app, nil
}

// WriteToDB drains the write channel, persisting each log row and notifying
// the OnLog callback when one is registered.
func (app *App) WriteToDB() {
	for logItem := range app.DBWriteChannel {
		if err := app.Repo.InsertLog(&logItem); err != nil {
			app.Logger.Error("inserting log", "error", err)
		}
		if app.OnLog != nil {
			if err := app.OnLog(logItem); err != nil {
				app.Logger.Error("log handler", "error", err)
			}
		}
	}
}

// WriteLog creates a log row, applies the given log options, mirrors it to
// the structured logger, and queues it for persistence.
func (app *App) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	logItem := domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	for _, option := range options {
		if err := option(&logItem); err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}
	app.mirrorLog(logItem)
	app.DBWriteChannel <- logItem
	return nil
}

func (app *App) mirrorLog(logItem domain.Log) {
	attrs := make([]any, 0, 4)
	if logItem.RequestID != nil {
		attrs = append(attrs, "request_id", logItem.RequestID.String())
	}
	if logItem.HookID != nil {
		attrs = append(attrs, "hook_id", logItem.HookID.String())
	}
	switch logItem.Level {
	case "DEBUG":
		app.Logger.Debug(logItem.Message, attrs...)
	case "WARN":
		app.Logger.Warn(logItem.Message, attrs...)
	case "ERROR", "FATAL":
		app.Logger.Error(logItem.Message, attrs...)
	default:
		app.Logger.Info(logItem.Message, attrs...)
	}
}

// GetConfigDir returns the configuration directory for hook scripts.
func (app *App) GetConfigDir() (string, error) {
	if app.ConfigDir == "" {
		return "", errors.New("no config dir configured")
	}
	return app.ConfigDir, nil
}

// GetHookRepo exposes the hook repository to the hook runtime.
func (app *App) GetHookRepo() (domain.HookRepository, error) {
	if app.Repo == nil {
		return nil, errors.New("no repository configured")
	}
	return app.Repo, nil
}

// GetSiteRepo exposes the site settings repository to the hook runtime.
func (app *App) GetSiteRepo() (domain.SiteRepository, error) {
	if app.Repo == nil {
		return nil, errors.New("no repository configured")
	}
	return app.Repo, nil
}

// PublishPage sends the page's triples to the graph service when a client is
// configured. Failures degrade to a log line, never an error for the caller.
func (app *App) PublishPage(ctx context.Context, page *domain.Page) {
	if app.Graph == nil {
		return
	}
	if err := app.Graph.PublishPage(ctx, page); err != nil {
		app.WriteLog("WARN", fmt.Sprintf("publishing page %s to graph : %s", page.Slug, err))
	}
}

// GetListener opens the TCP listener for the configured address and port,
// wrapped to survive transient accept errors.
func (app *App) GetListener(address string, port string) (net.Listener, error) {
	rawListener, err := net.Listen("tcp", fmt.Sprintf("%s:%s", address, port))
	if err != nil {
		return rawListener, fmt.Errorf("setting up listener on address:port %s:%s", address, port)
	}
	app.Addr = address
	app.Port = port
	app.WriteLog("INFO", fmt.Sprintf("Vellum Service Started on %s:%s", address, port))
	return listener.NewResilientListener(rawListener), nil
}

// Serve starts the write channel drain and serves HTTP on the listener until
// it is closed or Shutdown is called.
func (app *App) Serve(l net.Listener) error {
	go app.WriteToDB()
	app.server = &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app.server.Serve(l)
}

// Shutdown gracefully stops the HTTP server.
func (app *App) Shutdown(ctx context.Context) error {
	if app.server == nil {
		return nil
	}
	return app.server.Shutdown(ctx)
}

// Close releases the repository. Call after Shutdown.
func (app *App) Close() error {
	if app.Repo != nil {
		return app.Repo.Close()
	}
	return nil
}

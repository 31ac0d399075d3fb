package vellum

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/vellum-ws/vellum/domain"
	"github.com/vellum-ws/vellum/graph"
)

// WithOptions applies a series of configuration functions to the app instance.
// Each option function can modify the app configuration and return an error if it fails.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		err := option(app)
		if err != nil {
			return fmt.Errorf("applying option on vellum : %w", err)
		}
	}
	return nil
}

// WithConfigDir configures the app to use the specified configuration directory.
// It creates the directory if it doesn't exist and initializes the configuration file using Viper.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}
		// At this point, the directory exists or was created successfully
		app.ConfigDir = appConfigDir

		// VIPER
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appConfigDir)
		viper.SetDefault("first_run", true)
		viper.SetDefault("address", "127.0.0.1")
		viper.SetDefault("port", "8080")
		viper.SetDefault("database_file", "vellum.db")
		viper.SetDefault("base_url", "http://localhost:8080")
		viper.SetDefault("nats_url", "")
		viper.SetDefault("cookie_name", "vellum_session")
		viper.SetDefault("session_hours", 24*7)
		viper.SetDefault("pretty_html", false)
		err = viper.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				// Config file is not found
				err = viper.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}
		app.Config = &Config{viper: viper.GetViper()}
		if err := viper.Unmarshal(app.Config); err != nil {
			return fmt.Errorf("unmarshalling config to struct : %w", err)
		}

		app.Config.ConfigDir = appConfigDir
		// Rewrite entire file from struct
		err = viper.WriteConfig()
		if err != nil {
			return fmt.Errorf("writing config after unmarshalling : %w", err)
		}
		return nil
	}
}

// WithRepo will take the Repository interface, closing any previously configured one
func WithRepo(repo Repository) func(*App) error {
	return func(app *App) error {
		// First we need to check if there is a repo
		if app.Repo != nil {
			if err := app.Repo.Close(); err != nil {
				return err
			}
			app.Repo = nil
		}
		app.Repo = repo
		return nil
	}
}

// WithLogger sets the structured logger that persisted log rows are mirrored to
func WithLogger(logger *slog.Logger) func(*App) error {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		app.Logger = logger
		return nil
	}
}

// WithHooks sets the Lua hook service used on page save and render
func WithHooks(hooks HookService) func(*App) error {
	return func(app *App) error {
		app.Hooks = hooks
		return nil
	}
}

// WithGraph sets the graph client used to publish page entities
func WithGraph(client *graph.Client) func(*App) error {
	return func(app *App) error {
		app.Graph = client
		return nil
	}
}

// WithAccessPolicy replaces the default access policy
func WithAccessPolicy(policy *Policy) func(*App) error {
	return func(app *App) error {
		if policy == nil {
			return errors.New("policy is nil")
		}
		app.Policy = policy
		return nil
	}
}

// WithTemplates replaces the embedded template set
func WithTemplates(templates *template.Template) func(*App) error {
	return func(app *App) error {
		if templates == nil {
			return errors.New("templates is nil")
		}
		app.Templates = templates
		return nil
	}
}

// WithLogHandler takes a handler function that will be executed on each Log
func WithLogHandler(handler func(log domain.Log) error) func(*App) error {
	return func(app *App) error {
		if app.OnLog != nil {
			return errors.New("app already has a log handler defined")
		}
		app.OnLog = handler
		return nil
	}
}

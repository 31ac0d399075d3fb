package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	vellum "github.com/vellum-ws/vellum"
	"github.com/vellum-ws/vellum/db"
	"github.com/vellum-ws/vellum/domain"
)

func initCmd(configDir *string) *cobra.Command {
	var (
		username string
		password string
		email    string
		title    string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration directory and the first admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initialize(*configDir, username, password, email, title)
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (required)")
	cmd.Flags().StringVar(&email, "email", "", "Admin contact address")
	cmd.Flags().StringVar(&title, "title", "Vellum", "Site title")
	cmd.MarkFlagRequired("password")

	return cmd
}

func initialize(configDir, username, password, email, title string) error {
	app, err := vellum.New(vellum.WithConfigDir(configDir))
	if err != nil {
		return fmt.Errorf("creating app : %w", err)
	}

	dbConn, err := db.New(databasePath(configDir, app.Config.DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening database : %w", err)
	}
	repo := db.NewRepo(dbConn)
	defer repo.Close()

	if !app.Config.FirstRun {
		return fmt.Errorf("%s is already initialized", configDir)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating user id : %w", err)
	}
	salt, err := vellum.NewSalt()
	if err != nil {
		return fmt.Errorf("generating salt : %w", err)
	}
	user := &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: vellum.HashPassword(password, salt),
		Salt:         salt,
		Admin:        true,
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateUser(user); err != nil {
		return fmt.Errorf("creating admin user : %w", err)
	}

	if err := repo.SetSetting(domain.SettingSiteTitle, title); err != nil {
		return fmt.Errorf("setting site title : %w", err)
	}
	if err := repo.SetSetting(domain.SettingSiteURL, app.Config.BaseURL); err != nil {
		return fmt.Errorf("setting site url : %w", err)
	}

	if err := app.Config.SetFirstRun(false); err != nil {
		return fmt.Errorf("persisting config : %w", err)
	}

	fmt.Printf("Initialized %s with admin user %q\n", configDir, username)
	return nil
}

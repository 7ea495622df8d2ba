package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"case_law_app_go/config"
	"case_law_app_go/db"
	"case_law_app_go/models"
	"case_law_app_go/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		email string
		admin bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a case law account from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			if err := db.Initialize(cfg.StoreDSN(), cfg.TursoAuthToken, cfg.Environment); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if email == "" {
				fmt.Print("Email: ")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				email = strings.TrimSpace(line)
			}

			// Get password securely
			fmt.Print("Password: ")
			passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Println()

			// Sign-up decides the role; --admin forces it
			user, err := services.NewAuthService(db.DB, admin).SignUp(context.Background(), email, string(passwordBytes))
			if err != nil {
				return err
			}

			log.Printf("User created: %s (role: %s)", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().BoolVar(&admin, "admin", true, "create the account with the admin role")
	return cmd
}

// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuskit/campuskit/internal/app"
	"github.com/campuskit/campuskit/internal/pkg/crypto"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "campuskit",
	Short: "University management backend",
	Long:  `campuskit is the REST backend for university account, academic and enrollment management.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, version)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.RunMigrations(cmd.Context(), cfgFile); err != nil {
			return err
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Println("Configuration is valid")
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin account commands",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a verified admin account",
	Long: `Create a verified admin account. Signup only issues student and
teacher roles, so the first admin is provisioned from the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if name == "" {
			name = "Administrator"
		}
		if password == "" {
			password = crypto.MustRandomHex(8) + "-Aa1!"
			fmt.Fprintf(os.Stderr, "Generated admin password: %s\n", password)
			fmt.Fprintln(os.Stderr, "Save this password, it will not be shown again.")
		}
		if err := app.CreateAdmin(cmd.Context(), cfgFile, name, email, password); err != nil {
			return err
		}
		fmt.Printf("Admin account %s created\n", email)
		return nil
	},
}

var genSecretCmd = &cobra.Command{
	Use:   "gen-secret",
	Short: "Generate a random signing secret",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(crypto.MustRandomHex(32))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("campuskit %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: /etc/campuskit/config.yaml or ./config.yaml)")

	adminCreateCmd.Flags().String("name", "", "display name for the admin account")
	adminCreateCmd.Flags().String("email", "", "email for the admin account (required)")
	adminCreateCmd.Flags().String("password", "", "password (generated when omitted)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(genSecretCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

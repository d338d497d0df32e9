// Command token mints a bearer token for machine callers such as an external
// timer hitting /api/run-scheduled-posts.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	userID string
	ttl    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token signed with SECRET_KEY",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	rootCmd.Flags().StringVar(&userID, "user", "scheduler", "user id to embed in the token")
	rootCmd.Flags().DurationVar(&ttl, "ttl", 365*24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if err := config.Require("SECRET_KEY", cfg.SecretKey); err != nil {
		return err
	}

	token, err := utils.GenerateToken(cfg.SecretKey, userID, ttl)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

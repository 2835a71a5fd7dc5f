// Command corailctl - служебные операции: токен администратора, миграции, каталог значков
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corail-backend/internal/config"
	"corail-backend/internal/logger"
)

var (
	cfg      *config.Config
	log      *zap.Logger
	tokenTTL time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "corailctl",
	Short:         "Outils d'administration Corail",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		l, err := logger.New(cfg.LogFormat, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		log = l
		zap.ReplaceGlobals(l)
		return nil
	},
}

func init() {
	tokenAdminCmd.Flags().DurationVar(&tokenTTL, "ttl", 365*24*time.Hour, "Durée de validité du token")
	tokenCmd.AddCommand(tokenAdminCmd)
	seedCmd.AddCommand(seedBadgesCmd)

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}

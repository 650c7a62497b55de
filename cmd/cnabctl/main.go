// Command cnabctl imports CNAB files from disk, for operator backfills
// and replays that should not go through the HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cardstream/cnab-import/internal/config"
	"github.com/cardstream/cnab-import/internal/importer"
	"github.com/cardstream/cnab-import/internal/logging"
	"github.com/cardstream/cnab-import/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	userID   string
	userName string
)

var rootCmd = &cobra.Command{
	Use:          "cnabctl",
	Short:        "Import CNAB transaction files into the card transactions store",
	SilenceUsage: true,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Decode a CNAB file and persist the batch atomically",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cnabctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cnabctl", version)
	},
}

func init() {
	importCmd.Flags().StringVar(&userID, "user-id", "", "importing user id recorded on every row (required)")
	importCmd.Flags().StringVar(&userName, "user-name", "", "importing user display name")
	_ = importCmd.MarkFlagRequired("user-id")

	rootCmd.AddCommand(importCmd, versionCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	imp := importer.New(
		store.NewTransactionStore(pool),
		store.NewAuditStore(pool),
		cfg.Import.MaxConcurrent,
		cfg.Import.MaxWaitTime,
	)

	outcome := imp.Import(ctx, file, info.Size(), filepath.Base(path), userID, userName)

	fmt.Printf("lines read: %d\n", outcome.LinesRead)
	fmt.Printf("written:    %d\n", outcome.Written)
	for _, e := range outcome.Errors {
		fmt.Printf("error: %s: %s\n", e.Context, e.Message)
	}

	if !outcome.Success {
		return fmt.Errorf("import failed with %d error(s)", len(outcome.Errors))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

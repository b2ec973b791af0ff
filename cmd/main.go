package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/philoatlas-backend/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "philoatlas",
	Short: "PhiloAtlas content API",
	Long:  `PhiloAtlas serves the philosophy content catalogue (philosophers, questions, terms), its metadata schema and the links between items.`,
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database and seed the default metadata schema, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Close(closeCtx)
	}()

	if err := a.Run(ctx); err != nil {
		a.Log.Error("server exited", "error", err)
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

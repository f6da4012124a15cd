package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"choreboard/internal/config"
	"choreboard/internal/httpmw"
	"choreboard/internal/model"
	"choreboard/internal/notify"
	"choreboard/internal/task"
	"choreboard/internal/view"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "choreboard",
	Short: "Family task board server.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "choreboard.yml", "path to YAML config")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	repo, err := openRepo(cfg.Storage)
	if err != nil {
		return err
	}
	if closer, ok := repo.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	notices := notify.NewLog(cfg.Notices.Keep)
	names := view.NewCache(
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.MaxEntries, nil)

	h := task.NewHandler(repo, cfg.View, notices)
	h.SetNameCache(names)
	h.SetMembers([]model.Member{})
	h.SetFamilies([]model.Family{})

	mux := http.NewServeMux()
	h.Register(mux)

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(log.Default()),
		httpmw.WithAccessLog(log.Default()),
	)

	log.Printf("choreboard listening on %s (storage: %s)", cfg.Server.Addr, cfg.Storage.Driver)
	return http.ListenAndServe(cfg.Server.Addr, handler)
}

func openRepo(cfg config.StorageConfig) (task.Repo, error) {
	switch cfg.Driver {
	case "file":
		return task.NewFileRepo(cfg.DataDir)
	case "sqlite":
		return task.OpenSQLiteRepo(filepath.Join(cfg.DataDir, "choreboard.db"))
	default:
		return task.NewMemoryRepo(), nil
	}
}

// affiliated is the order collection and reconciliation server: it pulls
// commission data from affiliate partner APIs, deduplicates and reconciles
// it into a local database, imports advertising spend from spreadsheet
// exports, and serves the joined reporting over HTTP.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/afflux-io/afflux/internal/adspend"
	"github.com/afflux-io/afflux/internal/api"
	"github.com/afflux-io/afflux/internal/auth"
	"github.com/afflux-io/afflux/internal/collector"
	"github.com/afflux-io/afflux/internal/config"
	"github.com/afflux-io/afflux/internal/platform"
	"github.com/afflux-io/afflux/internal/store"
)

func main() {
	configPath := flag.String("config", "afflux.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	keeper, err := auth.NewKeeper(cfg.CredentialKey)
	if err != nil {
		log.Fatalf("keeper: %v", err)
	}
	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL)

	var recognizer platform.Recognizer
	if cfg.RecognizerURL != "" {
		recognizer = &platform.HTTPRecognizer{URL: cfg.RecognizerURL}
	}

	coll := collector.New(db, logger,
		platform.NewLinkHaitao(db, recognizer, logger),
		platform.NewPartnerMatic(),
		platform.NewLinkBux(),
		platform.NewRewardoo(),
	)
	coll.Pause = cfg.CollectPause

	importer := &adspend.Importer{Store: db, Logger: logger}

	handler := api.NewHandler(db, sessions, keeper, coll, importer, nil, logger)
	server := api.NewServer(handler, logger)

	logger.Info("afflux ready", "addr", cfg.Addr, "db", cfg.DatabasePath)
	if err := server.Serve(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

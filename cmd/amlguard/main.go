package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Aidin1998/amlguard/internal/annotator"
	"github.com/Aidin1998/amlguard/internal/api"
	"github.com/Aidin1998/amlguard/internal/casestore"
	"github.com/Aidin1998/amlguard/internal/config"
	"github.com/Aidin1998/amlguard/internal/model"
	"github.com/Aidin1998/amlguard/internal/report"
	"github.com/Aidin1998/amlguard/internal/screening"
	"github.com/Aidin1998/amlguard/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to configuration file")
		casesPath  = flag.String("cases", "", "screen a JSON file of sample cases and exit")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	store := casestore.NewMemoryStore()
	metrics := screening.NewMetrics(prometheus.DefaultRegisterer)
	svc, err := screening.NewService(cfg, annotator.NewRuleBased(), store, metrics, zapLogger.Named("screening"))
	if err != nil {
		zapLogger.Fatal("failed to build screening service", zap.Error(err))
	}

	if *casesPath != "" {
		if err := runSampleCases(svc, *casesPath); err != nil {
			zapLogger.Fatal("sample case run failed", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg.Server, svc, store, zapLogger.Named("api"))
	if err := server.Start(ctx); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("shutdown complete")
}

type sampleCase struct {
	Scenario        string            `json:"scenario"`
	Transaction     model.Transaction `json:"transaction"`
	Customer        model.Customer    `json:"customer"`
	ExpectedOutcome string            `json:"expected_outcome,omitempty"`
}

func runSampleCases(svc *screening.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var cases []sampleCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	ctx := context.Background()
	for i, sample := range cases {
		fmt.Printf("\nProcessing case %d: %s\n%s\n", i+1, sample.Scenario, divider(40))
		terminal, err := svc.Screen(ctx, &sample.Transaction, &sample.Customer)
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			continue
		}
		fmt.Println(report.FromState(terminal).Render())
		if sample.ExpectedOutcome != "" {
			fmt.Printf("Expected outcome: %s\n", sample.ExpectedOutcome)
		}
	}
	return nil
}

func divider(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '='
	}
	return string(out)
}

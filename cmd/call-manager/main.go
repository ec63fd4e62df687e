// cmd/call-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coldcall-backend/internal/api"
	commonaws "coldcall-backend/internal/common/aws"
	"coldcall-backend/internal/common/config"
	"coldcall-backend/internal/common/database"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/common/observability"
	"coldcall-backend/internal/engine"
	"coldcall-backend/internal/extraction"
	"coldcall-backend/internal/prospect"
	"coldcall-backend/internal/report"
	"coldcall-backend/internal/session"
	"coldcall-backend/internal/wording"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")
	bootLog.Info("Starting call manager...")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("call-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Turn engine ---
	engineCfg := cfg.Engine.ToEngineConfig()
	eng, err := engine.New(engineCfg)
	if err != nil {
		zapLog.Fatal("engine configuration invalid", zap.Error(err))
	}

	// --- Extraction / wording / prospect chains ---
	// Without an LLM base URL every chain runs on its deterministic leg.
	var (
		extractLLM  extraction.Extractor
		wordingLLM  wording.Renderer
		prospectLLM prospect.Generator
	)
	if cfg.APIs.LLM.BaseURL != "" {
		llmTimeout := config.GetDuration(cfg.APIs.LLM.Timeout)
		extractLLM = extraction.NewLLM(&extraction.LLMConfig{
			BaseURL:    cfg.APIs.LLM.BaseURL,
			APIKey:     cfg.APIs.LLM.APIKey,
			Model:      cfg.APIs.LLM.Model,
			Timeout:    llmTimeout,
			MaxRetries: cfg.APIs.LLM.MaxRetries,
		}, log)
		wordingLLM = wording.NewLLM(&wording.LLMConfig{
			BaseURL:    cfg.APIs.LLM.BaseURL,
			APIKey:     cfg.APIs.LLM.APIKey,
			Model:      cfg.APIs.LLM.Model,
			Timeout:    llmTimeout,
			MaxRetries: cfg.APIs.LLM.MaxRetries,
		}, log)
		prospectLLM = prospect.NewLLM(&prospect.LLMConfig{
			BaseURL:    cfg.APIs.LLM.BaseURL,
			APIKey:     cfg.APIs.LLM.APIKey,
			Model:      cfg.APIs.LLM.Model,
			Timeout:    llmTimeout,
			MaxRetries: cfg.APIs.LLM.MaxRetries,
		}, log)
		zapLog.Info("LLM client configured", zap.String("model", cfg.APIs.LLM.Model))
	} else {
		zapLog.Info("No LLM base URL set, running rule-based and scripted only")
	}

	extractChain := extraction.NewChain(extractLLM, extraction.NewRuleBased(), cfg.Session.ForceRuleBased, engineCfg, log)
	wordingChain := wording.NewChain(wordingLLM, wording.NewTemplates(), log)
	prospectChain := prospect.NewChain(prospectLLM, prospect.NewScripted(), log)

	// --- Report pipeline (post-call fan-out) ---
	repo := report.NewRepository(pg.GetDB(), log)
	indexer := report.NewIndexer(esClient, cfg.Database.Elasticsearch.TraceIndex, log)

	var notifier *report.Notifier
	if cfg.Integrations.AWS.SES.Enabled || cfg.Integrations.AWS.SNS.Enabled {
		var email report.EmailSender
		var sms report.SMSPublisher

		if cfg.Integrations.AWS.SES.Enabled {
			sesClient, err := commonaws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Integrations.AWS.SNS.Enabled {
			snsClient, err := commonaws.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
			sms = snsClient
		}

		notifierCfg := report.NotifierConfig{
			Threshold: cfg.Session.NotifyThreshold,
			FromEmail: cfg.Integrations.AWS.SES.FromEmail,
			ToEmail:   cfg.Integrations.AWS.SES.ToEmail,
		}
		if cfg.Integrations.AWS.SNS.Enabled {
			notifierCfg.TopicARN = cfg.Integrations.AWS.SNS.TopicARN
		}
		notifier = report.NewNotifier(email, sms, notifierCfg, log)
		zapLog.Info("Lead notifications enabled",
			zap.String("threshold", cfg.Session.NotifyThreshold),
			zap.Bool("ses", cfg.Integrations.AWS.SES.Enabled),
			zap.Bool("sns", cfg.Integrations.AWS.SNS.Enabled),
		)
	}

	pipeline := report.NewPipeline(repo, indexer, notifier, log)

	// --- Session layer ---
	store := session.NewStore(redisClient, time.Duration(cfg.Session.TTL)*time.Second, log)
	manager := session.NewManager(session.ManagerOptions{
		Engine:      eng,
		Store:       store,
		Extractor:   extractChain,
		Wording:     wordingChain,
		Prospect:    prospectChain,
		Finalizer:   pipeline,
		Opener:      cfg.Session.OpenerText,
		DefaultMode: cfg.Session.ProspectMode,
	}, log)

	// --- HTTP server ---
	router := api.NewRouter(api.NewHandler(manager, log))
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			var kind string
			switch {
			case strings.HasPrefix(r.URL.Path, "/api/v1/input/"):
				kind = "input"
			case strings.HasPrefix(r.URL.Path, "/api/v1/prospect/"):
				kind = "prospect"
			default:
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			next.ServeHTTP(w, r)
			obs.RecordTurnProcessed(r.Context(), kind)
			obs.RecordTurnDuration(r.Context(), time.Since(start), kind)
		})
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Call manager stopped gracefully")
}

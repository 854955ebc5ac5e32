// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pos-onboarding-workers/internal/agents"
	"pos-onboarding-workers/internal/common/artifacts"
	"pos-onboarding-workers/internal/common/auth"
	"pos-onboarding-workers/internal/common/aws"
	"pos-onboarding-workers/internal/common/camunda"
	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/database"
	"pos-onboarding-workers/internal/common/discovery"
	"pos-onboarding-workers/internal/common/docai"
	"pos-onboarding-workers/internal/common/genai"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/observability"
	"pos-onboarding-workers/internal/common/places"
	"pos-onboarding-workers/internal/common/zoho"
	"pos-onboarding-workers/internal/kyc"
	"pos-onboarding-workers/internal/onboarding"
	"pos-onboarding-workers/internal/opportunity"

	// Qualification
	fb "pos-onboarding-workers/internal/workers/qualify/find-business"

	// Recommendation
	idv "pos-onboarding-workers/internal/workers/recommend/identify-device"
	ks "pos-onboarding-workers/internal/workers/recommend/knowledge-search"
	vdv "pos-onboarding-workers/internal/workers/recommend/visualize-device"
	ws "pos-onboarding-workers/internal/workers/recommend/web-search"

	// KYC
	ebs "pos-onboarding-workers/internal/workers/kyc/extract-bank-statement"
	edl "pos-onboarding-workers/internal/workers/kyc/extract-drivers-license"
	sdl "pos-onboarding-workers/internal/workers/kyc/screen-drivers-license"
	vi "pos-onboarding-workers/internal/workers/kyc/verify-identity"

	// CRM & onboarding
	gop "pos-onboarding-workers/internal/workers/crm/get-opportunity"
	uop "pos-onboarding-workers/internal/workers/crm/update-opportunity"
	as "pos-onboarding-workers/internal/workers/onboarding/advance-stage"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// registration pairs a task type with the handler that serves it.
type registration struct {
	taskType string
	handle   worker.JobHandler
}

// collaborators are the clients shared between workers.
type collaborators struct {
	sessions  artifacts.Sessions
	places    *places.Client
	genai     *genai.Client
	knowledge ks.Backend
	search    *ws.CustomSearchClient
	extractor *kyc.Extractor
	verifier  *kyc.Verifier
	sink      *opportunity.Sink
	machine   *onboarding.Machine
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	descriptors, err := agents.Build(cfg.Agent)
	if err != nil {
		zapLog.Fatal("agent descriptors invalid", zap.Error(err))
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return pg.EnsureSchema(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	clients, err := newCollaborators(ctx, cfg, pg, rdb, log, obs, zapLog)
	if err != nil {
		zapLog.Fatal("collaborator setup failed", zap.Error(err))
	}
	zapLog.Info("All external service clients initialized",
		zap.String("knowledgeBackend", clients.knowledge.Name()),
	)

	registrations, err := buildHandlers(cfg, clients, log, obs)
	if err != nil {
		zapLog.Fatal("handler setup failed", zap.Error(err))
	}

	var workers []worker.JobWorker
	for _, r := range registrations {
		if w := camunda.StartWorker(zeebe.GetClient(), r.taskType, config.GetWorkerConfig(cfg, r.taskType), r.handle, zapLog); w != nil {
			workers = append(workers, w)
		}
	}
	zapLog.Info("Workers registered",
		zap.Int("started", len(workers)),
		zap.Int("known", len(registrations)),
	)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newMux(descriptors, zeebe, pg, rdb),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newCollaborators(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, log logger.Logger, obs *observability.Observability, zapLog *zap.Logger) (*collaborators, error) {
	c := &collaborators{
		sessions: artifacts.NewRedisStore(rdb.Client, cfg.Artifacts.KeyPrefix, cfg.Artifacts.TTLDuration()),
	}

	c.places = places.NewClient(cfg.Places.BaseURL, cfg.Places.APIKey, cfg.Places.PhotoMaxWidth,
		httpclient.NewClient(config.GetDuration(cfg.Places.Timeout), httpclient.WithRetries(2, 200*time.Millisecond)), obs)

	c.genai = genai.NewClient(cfg.GenAI.BaseURL, cfg.GenAI.APIKey,
		httpclient.NewClient(config.GetDuration(cfg.GenAI.Timeout), httpclient.WithRetries(cfg.GenAI.MaxRetries, 500*time.Millisecond)), obs)

	c.search = ws.NewCustomSearchClient(cfg.WebSearch.BaseURL, cfg.WebSearch.APIKey, cfg.WebSearch.EngineID,
		httpclient.NewClient(config.GetDuration(cfg.WebSearch.Timeout)), obs)

	// Document AI and Discovery Engine share the Google token source.
	tokens, err := auth.NewGoogleTokenSource(ctx, cfg.Google)
	if err != nil {
		zapLog.Warn("Google credentials unavailable; document and knowledge calls will be rejected", zap.Error(err))
	}
	googleClient := func(timeoutMs int) *httpclient.Client {
		if tokens == nil {
			return httpclient.NewClient(config.GetDuration(timeoutMs))
		}
		return httpclient.NewClient(config.GetDuration(timeoutMs), httpclient.WithTokenSource(tokens))
	}

	switch cfg.Knowledge.Backend {
	case config.KnowledgeBackendElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		err = retryWithBackoff(func() error {
			if err := es.Ping(ctx); err != nil {
				return err
			}
			return es.EnsureKnowledgeIndex(ctx, cfg.Knowledge.Index)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		c.knowledge = ks.NewElasticsearchBackend(es.Client, cfg.Knowledge.Index, cfg.Knowledge.MaxResults, obs)
	default:
		c.knowledge = ks.NewDiscoveryBackend(discovery.NewClient(cfg.Knowledge.BaseURL, cfg.Google.ProjectID,
			cfg.Knowledge.Location, cfg.Knowledge.EngineID, cfg.Knowledge.MaxResults, googleClient(cfg.Knowledge.Timeout), obs))
	}

	processor := docai.NewClient(cfg.DocumentAI.Endpoint, googleClient(cfg.DocumentAI.Timeout), obs)
	c.extractor = kyc.NewExtractor(processor, kyc.Processors{
		IDProofing:     cfg.DocumentAI.IDProofingProcessor,
		DriversLicense: cfg.DocumentAI.DriversLicenseProcessor,
		BankStatement:  cfg.DocumentAI.BankStatementProcessor,
	}, cfg.KYC.FraudSignals)

	crm := zoho.NewCRMClient(cfg.Integrations.Zoho.BaseURL, cfg.Integrations.Zoho.AuthToken, 10*time.Second, obs)
	c.sink = opportunity.NewSink(crm, log)

	notifier, err := aws.NewSalesNotifierFromConfig(ctx, cfg.Integrations.AWS, log)
	if err != nil {
		return nil, err
	}

	c.verifier = kyc.NewVerifier(kyc.VerifierDependencies{
		Extractor: c.extractor,
		Annotator: c.sink,
		Audit:     kyc.NewPostgresAuditStore(pg.DB),
		Notifier:  notifier,
		Logger:    log,
		Domain:    cfg.Agent.DomainName,
	})

	c.machine = onboarding.NewMachine(
		onboarding.NewPostgresSessionStore(pg.DB, rdb.Client, cfg.Artifacts.TTLDuration()),
		c.sink, log,
	)
	return c, nil
}

func buildHandlers(cfg *config.Config, c *collaborators, log logger.Logger, obs *observability.Observability) ([]registration, error) {
	var out []registration
	add := func(taskType string, h jobHandler, err error) error {
		if err != nil {
			return fmt.Errorf("create %s handler: %w", taskType, err)
		}
		out = append(out, registration{taskType: taskType, handle: h.Handle})
		return nil
	}

	findBusiness, err := fb.NewHandler(fb.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Places: c.places})
	if err := add(fb.TaskType, findBusiness, err); err != nil {
		return nil, err
	}

	identify, err := idv.NewHandler(idv.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Model: c.genai, Artifacts: c.sessions})
	if err := add(idv.TaskType, identify, err); err != nil {
		return nil, err
	}

	visualize, err := vdv.NewHandler(vdv.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Model: c.genai, Artifacts: c.sessions})
	if err := add(vdv.TaskType, visualize, err); err != nil {
		return nil, err
	}

	knowledge, err := ks.NewHandler(ks.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Backend: c.knowledge, Artifacts: c.sessions})
	if err := add(ks.TaskType, knowledge, err); err != nil {
		return nil, err
	}

	search, err := ws.NewHandler(ws.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Searcher: c.search})
	if err := add(ws.TaskType, search, err); err != nil {
		return nil, err
	}

	screen, err := sdl.NewHandler(sdl.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Screener: c.extractor, Artifacts: c.sessions})
	if err := add(sdl.TaskType, screen, err); err != nil {
		return nil, err
	}

	license, err := edl.NewHandler(edl.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Extractor: c.extractor, Artifacts: c.sessions})
	if err := add(edl.TaskType, license, err); err != nil {
		return nil, err
	}

	statement, err := ebs.NewHandler(ebs.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Extractor: c.extractor, Artifacts: c.sessions})
	if err := add(ebs.TaskType, statement, err); err != nil {
		return nil, err
	}

	verify, err := vi.NewHandler(vi.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Verifier: c.verifier, Artifacts: c.sessions})
	if err := add(vi.TaskType, verify, err); err != nil {
		return nil, err
	}

	update, err := uop.NewHandler(uop.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Annotator: c.sink})
	if err := add(uop.TaskType, update, err); err != nil {
		return nil, err
	}

	get, err := gop.NewHandler(gop.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Finder: c.sink})
	if err := add(gop.TaskType, get, err); err != nil {
		return nil, err
	}

	advance, err := as.NewHandler(as.HandlerOptions{AppConfig: cfg, Logger: log, Observability: obs, Machine: c.machine})
	if err := add(as.TaskType, advance, err); err != nil {
		return nil, err
	}

	return out, nil
}

type jobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

func newMux(descriptors []agents.Descriptor, zeebe *camunda.Client, pg *database.PostgresClient, rdb *database.RedisClient) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		} {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": map[bool]string{true: "ready", false: "not_ready"}[status == http.StatusOK],
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/agents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, descriptors)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

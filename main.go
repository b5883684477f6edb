package main

import (
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rabfront/client"
	"rabfront/commands"
	"rabfront/config"
	"rabfront/devserver"
	"rabfront/export"
	"rabfront/handlers"
	"rabfront/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	app := pocketbase.New()
	app.RootCmd.AddCommand(commands.NewExportCommand(cfg, log))

	metrics := export.NewMetrics(prometheus.DefaultRegisterer)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		apiCfg := cfg
		apiCfg.ResolveBaseURLs("http://" + se.Server.Addr)

		c := client.New(apiCfg.EstimationBaseURL, apiCfg.ExportBaseURL,
			client.StaticSession(apiCfg.APIToken), client.WithLogger(log))
		x := export.NewExporter(c, export.WithMetrics(metrics))

		log.Info("server.configured",
			zap.String("estimation_api", apiCfg.EstimationBaseURL),
			zap.String("export_api", apiCfg.ExportBaseURL),
			zap.Bool("dev_stub", cfg.DevStub),
		)

		se.Router.BindFunc(handlers.RequestLogger(log))

		// ── Estimations ──────────────────────────────────────────
		se.Router.GET("/estimations", handlers.HandleEstimationList(c))
		se.Router.GET("/estimations/{id}", handlers.HandleEstimationView(c))
		se.Router.POST("/estimations/{id}/export/{variant}", handlers.HandleExport(x))

		// ── Operations ───────────────────────────────────────────
		se.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))

		if cfg.DevStub {
			stub := devserver.New(devserver.NewStore(devserver.SeedDocuments()...), cfg.DevStubToken, log.Named("devserver"))
			se.Router.Any(config.DevStubPath+"/{path...}",
				apis.WrapStdHandler(http.StripPrefix(config.DevStubPath, stub.Handler())))
			log.Warn("server.dev_stub_mounted", zap.String("path", config.DevStubPath))
		}

		// Redirect home to the estimation list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/estimations")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal("app.start_failed", zap.Error(err))
	}
}

package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	detectinadapter "cgmlens/internal/modules/detect/adapter/in"
	detectoutadapter "cgmlens/internal/modules/detect/adapter/out"
	detectservice "cgmlens/internal/modules/detect/service"
	detectusecase "cgmlens/internal/modules/detect/usecase"
	metricsinadapter "cgmlens/internal/modules/metrics/adapter/in"
	metricsoutadapter "cgmlens/internal/modules/metrics/adapter/out"
	metricsservice "cgmlens/internal/modules/metrics/service"
	metricsusecase "cgmlens/internal/modules/metrics/usecase"
	plugininadapter "cgmlens/internal/modules/plugin/adapter/in"
	pluginoutadapter "cgmlens/internal/modules/plugin/adapter/out"
	pluginservice "cgmlens/internal/modules/plugin/service"
	pluginusecase "cgmlens/internal/modules/plugin/usecase"
	readingsinadapter "cgmlens/internal/modules/readings/adapter/in"
	readingsoutadapter "cgmlens/internal/modules/readings/adapter/out"
	readingsservice "cgmlens/internal/modules/readings/service"
	readingsusecase "cgmlens/internal/modules/readings/usecase"
	sessioninadapter "cgmlens/internal/modules/session/adapter/in"
	sessionoutadapter "cgmlens/internal/modules/session/adapter/out"
	sessiondomain "cgmlens/internal/modules/session/domain"
	sessionservice "cgmlens/internal/modules/session/service"
	sessionusecase "cgmlens/internal/modules/session/usecase"
	"cgmlens/internal/platform/clock"
	"cgmlens/internal/platform/config"
	"cgmlens/internal/platform/id"
	uiapp "cgmlens/internal/ui/app"
)

type App struct {
	ReadingsCLI readingsinadapter.CLIHandler
	DetectCLI   detectinadapter.CLIHandler
	MetricsCLI  metricsinadapter.CLIHandler
	SessionCLI  sessioninadapter.CLIHandler
	PluginCLI   plugininadapter.CLIHandler
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	readingsProjector, err := readingsoutadapter.NewSQLiteUploadProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new upload projector: %w", err)
	}
	readingsSvc := readingsservice.NewUploadService(
		clk,
		ids,
		readingsoutadapter.NewCSVExportParser(),
		readingsoutadapter.NewNoteUploadStore(cfg.DataPath),
		readingsProjector,
	)
	readingsUC := readingsusecase.NewInteractor(readingsSvc)

	pluginUC := pluginusecase.NewInteractor(pluginservice.NewPluginService(
		pluginoutadapter.NewFileManifestStore(cfg.DataPath),
		pluginoutadapter.NewGRPCHost(),
	))

	analysisProjector, err := detectoutadapter.NewSQLiteAnalysisProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new analysis projector: %w", err)
	}
	detectSvc := detectservice.NewDetectService(
		detectoutadapter.NewReadingsSeriesSource(readingsUC),
		detectoutadapter.NewYAMLConfigSource(cfg.SettingsPath),
		detectoutadapter.NewPluginDetector(pluginUC),
		analysisProjector,
	)
	detectUC := detectusecase.NewInteractor(detectSvc)

	metricsSvc := metricsservice.NewMetricsService(
		clk,
		metricsoutadapter.NewReadingsUploadSource(readingsUC),
		metricsoutadapter.NewDetectMaskSource(detectUC),
		metricsoutadapter.NewNoteReportStore(cfg.DataPath),
	)
	metricsUC := metricsusecase.NewInteractor(metricsSvc)

	sessionProjector, err := sessionoutadapter.NewSQLiteSessionProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session projector: %w", err)
	}
	sessionSvc := sessionservice.NewSessionService(
		sessionoutadapter.NewReadingsSampleSource(readingsUC),
		sessionProjector,
		sessiondomain.NewPolicy(sessiondomain.DefaultDeviceLimits()),
	)
	sessionUC := sessionusecase.NewInteractor(sessionSvc)

	return &App{
		ReadingsCLI: readingsinadapter.NewCLIHandler(readingsUC),
		DetectCLI:   detectinadapter.NewCLIHandler(detectUC),
		MetricsCLI:  metricsinadapter.NewCLIHandler(metricsUC),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		PluginCLI:   plugininadapter.NewCLIHandler(pluginUC),
	}, nil
}

func RunTUI(dataPath string, app *App) error {
	model := uiapp.NewModel(dataPath, app.ReadingsCLI, app.DetectCLI, app.MetricsCLI, app.SessionCLI, app.PluginCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

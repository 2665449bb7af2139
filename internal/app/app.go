package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/handlers"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/services/analyze"
	"github.com/ternarybob/clarity/internal/services/catalog"
	"github.com/ternarybob/clarity/internal/services/extract"
	"github.com/ternarybob/clarity/internal/services/features"
	"github.com/ternarybob/clarity/internal/services/followup"
	"github.com/ternarybob/clarity/internal/services/llm"
	"github.com/ternarybob/clarity/internal/services/maintenance"
	"github.com/ternarybob/clarity/internal/services/pdf"
	"github.com/ternarybob/clarity/internal/services/prd"
	"github.com/ternarybob/clarity/internal/services/stakeholder"
	"github.com/ternarybob/clarity/internal/services/suggest"
	"github.com/ternarybob/clarity/internal/services/templates"
	"github.com/ternarybob/clarity/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	CatalogService     interfaces.CatalogService
	ExtractService     interfaces.TextExtractor
	LLMService         interfaces.LLMService
	SuggestEngine      *suggest.Engine
	FollowupEngine     *followup.Engine
	AnalyzeService     *analyze.Service
	FeatureService     *features.Service
	PRDService         *prd.Service
	PDFService         interfaces.PDFService
	StakeholderService *stakeholder.Service
	TemplateService    *templates.Service
	MaintenanceService *maintenance.Service

	// HTTP handlers
	APIHandler         *handlers.APIHandler
	ProjectHandler     *handlers.ProjectHandler
	ContextHandler     *handlers.ContextHandler
	QuestionHandler    *handlers.QuestionHandler
	FeatureHandler     *handlers.FeatureHandler
	PRDHandler         *handlers.PRDHandler
	StakeholderHandler *handlers.StakeholderHandler
	TemplateHandler    *handlers.TemplateHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initServices()
	app.initHandlers()

	if err := app.MaintenanceService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Maintenance scheduler failed to start")
	}

	return app, nil
}

func (a *App) initDatabase() error {
	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	return nil
}

// initServices wires the service layer. A failed LLM provider setup is
// not fatal: the app runs with AI endpoints reporting unavailable.
func (a *App) initServices() {
	a.CatalogService = catalog.NewService(a.Config.Catalog.Path, a.Logger)
	a.ExtractService = extract.NewService(a.Logger)

	llmService, err := llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("AI provider not configured, AI features disabled")
	} else {
		a.LLMService = llmService
	}

	a.SuggestEngine = suggest.NewEngine(a.LLMService, a.Config.Suggest, a.Logger)
	a.FollowupEngine = followup.NewEngine(a.CatalogService, a.StorageManager.ResponseStorage(), a.LLMService, a.Config.Followup, a.Logger)
	a.AnalyzeService = analyze.NewService(a.LLMService, a.Logger)
	a.FeatureService = features.NewService(a.LLMService, a.StorageManager.FeatureStorage(), a.Logger)
	a.PRDService = prd.NewService(a.LLMService, a.StorageManager.PRDStorage(), a.StorageManager.ResponseStorage(), a.CatalogService, a.Logger)
	a.PDFService = pdf.NewService(a.Logger)
	a.StakeholderService = stakeholder.NewService(a.LLMService, a.Config.Stakeholder.ProfilesPath, a.Logger)
	a.TemplateService = templates.NewService(a.StorageManager.TemplateStorage(), a.Logger)
	if err := a.TemplateService.EnsureDefault("Standard PRD", "The built-in PRD outline", prd.DefaultSections()); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to seed default PRD template")
	}
	a.MaintenanceService = maintenance.NewService(
		a.StorageManager.ProjectStorage(),
		a.StorageManager.PRDStorage(),
		a.Config.Maintenance,
		a.Config.PRD.SnapshotRetention,
		a.Logger,
	)
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.LLMService, a.Logger)
	a.ProjectHandler = handlers.NewProjectHandler(a.StorageManager, a.Logger)
	a.ContextHandler = handlers.NewContextHandler(a.StorageManager, a.ExtractService, a.AnalyzeService, a.Config.Upload, a.Logger)
	a.QuestionHandler = handlers.NewQuestionHandler(a.StorageManager, a.CatalogService, a.SuggestEngine, a.FollowupEngine, a.FeatureService, a.Logger)
	a.FeatureHandler = handlers.NewFeatureHandler(a.StorageManager, a.FeatureService, a.Logger)
	a.PRDHandler = handlers.NewPRDHandler(a.StorageManager, a.PRDService, a.FeatureService, a.PDFService, a.Logger)
	a.StakeholderHandler = handlers.NewStakeholderHandler(a.PRDService, a.StakeholderService, a.Logger)
	a.TemplateHandler = handlers.NewTemplateHandler(a.TemplateService, a.Logger)
}

// Close releases application resources in reverse dependency order
func (a *App) Close() error {
	if a.MaintenanceService != nil {
		a.MaintenanceService.Stop()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close AI service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}

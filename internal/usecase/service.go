package usecase

import (
	"goal-navigator/internal/config"
	"goal-navigator/internal/execute"
	"goal-navigator/internal/inspect"
	"goal-navigator/internal/ports"
	"goal-navigator/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Agent   adapters.AgentService
	Browser adapters.BrowserService
}

type Params struct {
	fx.In

	Logger    *zap.Logger
	Config    *config.Config
	Browser   ports.BrowserManager
	AI        ports.DecisionClient
	Inspector *inspect.Inspector
	Executor  *execute.Executor
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Agent:   factory.CreateAgentService(),
		Browser: factory.CreateBrowserService(),
	}
}

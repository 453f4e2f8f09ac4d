package usecase

import (
	"goal-navigator/internal/usecase/adapters"
)

type serviceFactory struct {
	deps Params
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps: deps,
	}
}

func (f *serviceFactory) CreateAgentService() adapters.AgentService {
	return NewAgentService(AgentServiceParams{
		Config:    f.deps.Config,
		Logger:    f.deps.Logger,
		Browser:   f.deps.Browser,
		AI:        f.deps.AI,
		Inspector: f.deps.Inspector,
		Executor:  f.deps.Executor,
	})
}

func (f *serviceFactory) CreateBrowserService() adapters.BrowserService {
	return f.deps.Browser
}

package adapters

import (
	"context"
	"goal-navigator/internal/entity"
)

type BrowserService interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	CurrentURL() string
	IsReady() bool
}

type AgentService interface {
	Execute(ctx context.Context, req entity.RunRequest) (*entity.Task, error)
	Stop()
}

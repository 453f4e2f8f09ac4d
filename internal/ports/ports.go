package ports

import (
	"context"
	"goal-navigator/internal/entity"
)

// BrowserManager owns the single active page. Implementations serialize every call.
type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	WaitForLoad(ctx context.Context) error
	CurrentURL() string
	ScanPage(ctx context.Context) (*entity.PageSnapshot, error)
	// LocateByID looks an element up on the live page by id attribute; nil when absent.
	LocateByID(ctx context.Context, id string) (*entity.RawCandidate, error)
	// ScrollIntoView returns the box translated into the viewport after any scrolling.
	ScrollIntoView(ctx context.Context, box entity.BoundingBox) (entity.BoundingBox, error)
	MoveMouse(ctx context.Context, x, y float64) error
	ClickAt(ctx context.Context, x, y float64) error
	TypeText(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
	Screenshot(ctx context.Context) ([]byte, error)
	IsReady() bool
}

type DecisionClient interface {
	Decide(ctx context.Context, req entity.DecisionRequest) (*entity.ActionDecision, error)
	// Reset drops the conversation history kept between steps of one run.
	Reset()
}

type AgentExecutor interface {
	Execute(ctx context.Context, req entity.RunRequest) (*entity.Task, error)
	Stop()
}

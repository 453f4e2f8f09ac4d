// Package fakes holds in-memory stand-ins for the ports used by tests.
package fakes

import (
	"context"
	"fmt"
	"goal-navigator/internal/entity"
	"sync"
)

// Browser is a scripted ports.BrowserManager. Each ScanPage call returns the
// next queued snapshot; the last one repeats once the queue is drained.
type Browser struct {
	mu sync.Mutex

	URL       string
	Snapshots []*entity.PageSnapshot
	ByID      map[string]*entity.RawCandidate
	Ready     bool

	ScanErr error
	// ScanErrCount limits ScanErr to the first N scans; zero means every scan fails.
	ScanErrCount int

	ClickErr error
	TypeErr  error
	PressErr error
	NavErr   error

	// OnClick runs after every successful click, e.g. to swap the next snapshot.
	OnClick func(x, y float64)

	calls []string
	scans int
}

func NewBrowser(url string, snapshots ...*entity.PageSnapshot) *Browser {
	return &Browser{
		URL:       url,
		Snapshots: snapshots,
		ByID:      make(map[string]*entity.RawCandidate),
		Ready:     true,
	}
}

// Calls returns the recorded primitive calls in order.
func (b *Browser) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.calls...)
}

func (b *Browser) Scans() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.scans
}

func (b *Browser) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *Browser) Launch(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Ready = true

	return nil
}

func (b *Browser) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Ready = false

	return nil
}

func (b *Browser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record("navigate %s", url)
	if b.NavErr != nil {
		return b.NavErr
	}

	b.URL = url

	return nil
}

func (b *Browser) WaitForLoad(context.Context) error {
	return nil
}

func (b *Browser) CurrentURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.URL
}

func (b *Browser) ScanPage(context.Context) (*entity.PageSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.scans++
	if b.ScanErr != nil && (b.ScanErrCount == 0 || b.scans <= b.ScanErrCount) {
		return nil, b.ScanErr
	}

	if len(b.Snapshots) == 0 {
		return &entity.PageSnapshot{URL: b.URL}, nil
	}

	snap := b.Snapshots[0]
	if len(b.Snapshots) > 1 {
		b.Snapshots = b.Snapshots[1:]
	}

	if snap.URL == "" {
		snap.URL = b.URL
	}

	return snap, nil
}

func (b *Browser) LocateByID(_ context.Context, id string) (*entity.RawCandidate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record("locate #%s", id)

	return b.ByID[id], nil
}

func (b *Browser) ScrollIntoView(_ context.Context, box entity.BoundingBox) (entity.BoundingBox, error) {
	return box, nil
}

func (b *Browser) MoveMouse(_ context.Context, x, y float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record("move %.0f,%.0f", x, y)

	return nil
}

func (b *Browser) ClickAt(_ context.Context, x, y float64) error {
	b.mu.Lock()
	b.record("click %.0f,%.0f", x, y)
	err := b.ClickErr
	hook := b.OnClick
	b.mu.Unlock()

	if err != nil {
		return err
	}

	if hook != nil {
		hook(x, y)
	}

	return nil
}

func (b *Browser) TypeText(_ context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record("type %s", text)

	return b.TypeErr
}

func (b *Browser) Press(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.record("press %s", key)

	return b.PressErr
}

func (b *Browser) Screenshot(context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (b *Browser) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Ready
}

package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Chrome returns a Factory backed by a headless Chrome/Chromium instance.
// Requires Chrome/Chromium to be installed on the system.
func Chrome() Factory {
	return func(ctx context.Context) (Browser, error) {
		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)

		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Start the browser process eagerly so launch failures surface
		// here rather than on the first navigation.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			return nil, &Error{Op: "launch", Message: "failed to start browser", Cause: err}
		}

		return &chromeBrowser{
			ctx:         browserCtx,
			cancel:      browserCancel,
			allocCancel: allocCancel,
		}, nil
	}
}

type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func (b *chromeBrowser) NewPage(_ context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, &Error{Op: "new_page", Message: "browser is closed"}
	}

	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	return &chromePage{ctx: tabCtx, cancel: tabCancel}, nil
}

func (b *chromeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.cancel()
	b.allocCancel()
	return nil
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// run executes actions on the tab, bounded by timeout when non-zero and by
// the caller's context either way.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return &Error{Op: "run", Message: "page is closed"}
	}
	p.mu.Unlock()

	runCtx := p.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) (*Navigation, error) {
	var status int
	err := p.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// The document status reflects the main response; full network
		// idle is deliberately not awaited to bound latency.
		chromedp.Evaluate(`performance.getEntriesByType("navigation").length > 0
			? (performance.getEntriesByType("navigation")[0].responseStatus || 200)
			: 200`, &status),
	)
	if err != nil {
		return nil, &Error{Op: "navigate", Message: url, Cause: err}
	}
	return &Navigation{OK: status >= 200 && status < 300, StatusCode: status}, nil
}

func (p *chromePage) Reload(ctx context.Context, timeout time.Duration) error {
	err := p.run(ctx, timeout,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Op: "reload", Message: "failed to reload page", Cause: err}
	}
	return nil
}

func (p *chromePage) Evaluate(ctx context.Context, script string, out any) error {
	if err := p.run(ctx, 0, chromedp.Evaluate(script, out)); err != nil {
		return &Error{Op: "evaluate", Message: "script evaluation failed", Cause: err}
	}
	return nil
}

func (p *chromePage) ScrollBy(ctx context.Context, deltaY int) error {
	var ignored string
	script := fmt.Sprintf(`window.scrollBy(0, %d); ""`, deltaY)
	if err := p.run(ctx, 0, chromedp.Evaluate(script, &ignored)); err != nil {
		return &Error{Op: "scroll", Message: "scroll failed", Cause: err}
	}
	return nil
}

func (p *chromePage) ContentHeight(ctx context.Context) (int, error) {
	var height int
	err := p.run(ctx, 0, chromedp.Evaluate(
		`Math.max(document.body.scrollHeight, document.documentElement.scrollHeight)`, &height))
	if err != nil {
		return 0, &Error{Op: "metrics", Message: "failed to read content height", Cause: err}
	}
	return height, nil
}

func (p *chromePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	return nil
}

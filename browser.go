package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Authenticator produces credentials for one login attempt.
type Authenticator interface {
	Login(ctx context.Context) (Credentials, error)
}

// AuthBrowser hosts the vendor login page in a Chromium window driven over
// the DevTools protocol and watches every navigation for the token redirect.
type AuthBrowser struct {
	loginURL string
	bin      string
	headless bool
	timeout  time.Duration
	logger   Logger
}

func NewAuthBrowser(cfg Config, logger Logger) *AuthBrowser {
	if logger == nil {
		logger = nopLogger{}
	}
	return &AuthBrowser{
		loginURL: LoginURL(cfg.RedirectURI, cfg.ClientID),
		bin:      cfg.BrowserBin,
		headless: cfg.Headless,
		timeout:  cfg.LoginTimeout,
		logger:   logger,
	}
}

// Login opens a fresh browser profile on the login page and blocks until the
// redirect carrying both tokens is seen, ctx ends, or the login timeout passes.
func (b *AuthBrowser) Login(ctx context.Context) (Credentials, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	found := make(chan Credentials, 1)
	watcher := NewTokenWatcher(b.logger, func(c Credentials) { found <- c })

	l := launcher.New().Context(ctx).Headless(b.headless).Leakless(true)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return Credentials{}, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	// Start from a clean session so a previous account is never reused.
	if err := browser.SetCookies(nil); err != nil {
		return Credentials{}, fmt.Errorf("failed to clear cookies: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to open login page: %w", err)
	}

	// Pause every document request so the token redirect can be failed
	// before it loads. Enabling here, with patterns, keeps EachEvent from
	// enabling Fetch for every resource type.
	restoreFetch := page.EnableDomain(&proto.FetchEnable{
		Patterns: []*proto.FetchRequestPattern{{
			URLPattern:   "*",
			ResourceType: proto.NetworkResourceTypeDocument,
			RequestStage: proto.FetchRequestStageRequest,
		}},
	})
	defer restoreFetch()

	stop := func() {
		go func() { _ = proto.PageStopLoading{}.Call(page) }()
	}
	wait := page.EachEvent(
		func(e *proto.FetchRequestPaused) {
			abort := observeRequest(watcher, e.Request)
			go func() {
				if abort {
					_ = proto.FetchFailRequest{
						RequestID:   e.RequestID,
						ErrorReason: proto.NetworkErrorReasonAborted,
					}.Call(page)
					return
				}
				_ = proto.FetchContinueRequest{RequestID: e.RequestID}.Call(page)
			}()
		},
		func(e *proto.PageFrameRequestedNavigation) {
			if watcher.Observe("started", e.URL) {
				stop()
			}
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame == nil {
				return
			}
			if watcher.Observe("finished", navigationURL(e.Frame.URL, e.Frame.URLFragment)) {
				stop()
			}
		},
		func(e *proto.PageNavigatedWithinDocument) {
			if watcher.Observe("finished", e.URL) {
				stop()
			}
		},
	)
	go wait()

	b.logger.Log("Opening login page")
	if err := page.Navigate(b.loginURL); err != nil {
		// An existing session can redirect straight to the token URL, which
		// the hook aborts.
		select {
		case creds := <-found:
			return creds, nil
		default:
		}
		return Credentials{}, fmt.Errorf("failed to navigate to login page: %w", err)
	}

	select {
	case creds := <-found:
		return creds, nil
	case <-ctx.Done():
		return Credentials{}, fmt.Errorf("%w: %v", ErrLoginAborted, ctx.Err())
	}
}

// observeRequest checks a paused request, fragment included. The implicit-flow
// redirect carries its tokens after the '#', which CDP reports separately from
// the request URL.
func observeRequest(w *TokenWatcher, req *proto.NetworkRequest) bool {
	if req == nil {
		return false
	}
	return w.Observe("request", navigationURL(req.URL, req.URLFragment))
}

// navigationURL rejoins a CDP URL with its separately reported fragment.
func navigationURL(base, fragment string) string {
	if fragment == "" {
		return base
	}
	if !strings.HasPrefix(fragment, "#") {
		fragment = "#" + fragment
	}
	return base + fragment
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cli/browser"
)

// ManualLogin opens the login page in the system browser and waits for the
// user to paste the address bar contents after signing in.
type ManualLogin struct {
	loginURL    string
	browserOpen func(string) error
	in          io.Reader
	out         io.Writer
	logger      Logger
}

func NewManualLogin(cfg Config, in io.Reader, out io.Writer, logger Logger) *ManualLogin {
	if logger == nil {
		logger = nopLogger{}
	}
	return &ManualLogin{
		loginURL:    LoginURL(cfg.RedirectURI, cfg.ClientID),
		browserOpen: browser.OpenURL,
		in:          in,
		out:         out,
		logger:      logger,
	}
}

// WithBrowserOpen replaces the function used to open the login page.
func (m *ManualLogin) WithBrowserOpen(fn func(string) error) *ManualLogin {
	m.browserOpen = fn
	return m
}

// Login feeds each pasted line through the same watcher the embedded browser
// uses until one yields credentials.
func (m *ManualLogin) Login(ctx context.Context) (Credentials, error) {
	found := make(chan Credentials, 1)
	watcher := NewTokenWatcher(m.logger, func(c Credentials) { found <- c })

	fmt.Fprintf(m.out, "Sign in at:\n  %s\nthen paste the full URL you were redirected to:\n", m.loginURL)
	if m.browserOpen != nil {
		if err := m.browserOpen(m.loginURL); err != nil {
			m.logger.Log("Could not open system browser: %v", err)
		}
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(m.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return Credentials{}, fmt.Errorf("%w: %v", ErrLoginAborted, ctx.Err())
		case err := <-readErr:
			if err != nil {
				return Credentials{}, fmt.Errorf("%w: read input: %v", ErrLoginAborted, err)
			}
			return Credentials{}, ErrLoginAborted
		case line := <-lines:
			if line == "" {
				continue
			}
			if !watcher.Observe("paste", line) {
				if HasTokenMarkers(line) {
					fmt.Fprintln(m.out, "That URL has an empty access_token or id_token, try again:")
				} else {
					fmt.Fprintln(m.out, "That URL does not contain both tokens, try again:")
				}
				continue
			}
			return <-found, nil
		}
	}
}

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManualLogin(in io.Reader, out io.Writer, opened *[]string) *ManualLogin {
	cfg, _ := LoadConfig("")
	return NewManualLogin(cfg, in, out, nil).WithBrowserOpen(func(u string) error {
		*opened = append(*opened, u)
		return nil
	})
}

func TestManualLoginAcceptsPastedRedirect(t *testing.T) {
	input := strings.Join([]string{
		"",
		"https://auth.riotgames.com/login",
		"https://playvalorant.com/opt_in#access_token=&id_token=",
		tokenRedirect,
		"https://never.read/",
	}, "\n")
	var out bytes.Buffer
	var opened []string

	creds, err := newTestManualLogin(strings.NewReader(input), &out, &opened).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Credentials{AccessToken: "AAA", IDToken: "III"}, creds)

	require.Len(t, opened, 1)
	assert.True(t, strings.HasPrefix(opened[0], "https://auth.riotgames.com/authorize?"))
	assert.Contains(t, out.String(), opened[0])
	assert.Equal(t, 2, strings.Count(out.String(), "try again"))
	assert.Equal(t, 1, strings.Count(out.String(), "does not contain both tokens"))
	assert.Equal(t, 1, strings.Count(out.String(), "has an empty access_token or id_token"))
}

func TestManualLoginEOF(t *testing.T) {
	var out bytes.Buffer
	var opened []string

	_, err := newTestManualLogin(strings.NewReader("nothing useful\n"), &out, &opened).Login(context.Background())
	assert.ErrorIs(t, err, ErrLoginAborted)
}

func TestManualLoginBrowserOpenFailureIsNotFatal(t *testing.T) {
	cfg, _ := LoadConfig("")
	m := NewManualLogin(cfg, strings.NewReader(tokenRedirect+"\n"), io.Discard, nil).
		WithBrowserOpen(func(string) error { return errors.New("no display") })

	creds, err := m.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AAA", creds.AccessToken)
}

func TestManualLoginContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var opened []string

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestManualLogin(pr, io.Discard, &opened).Login(ctx)
	assert.ErrorIs(t, err, ErrLoginAborted)
}

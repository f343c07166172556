package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdin, os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "valshop",
		Usage:     "sign in with a Riot account and print the current storefront",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file with VALSHOP_* settings",
			},
			&cli.BoolFlag{
				Name:  "manual",
				Usage: "open the login page in the system browser and paste the redirect URL",
			},
			&cli.StringFlag{
				Name:  "redirect-url",
				Usage: "skip login and take tokens from this post-login redirect URL",
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "run the embedded browser without a window",
			},
			&cli.StringFlag{
				Name:  "proxy",
				Usage: "proxy for API calls (ip:port, ip:port:user:pass or URL)",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "shard to use when region detection fails",
			},
			&cli.DurationFlag{
				Name:  "request-timeout",
				Usage: "deadline for each API request",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose transport logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := LoadConfig(cmd.String("env-file"))
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, &cfg); err != nil {
				return err
			}
			return run(ctx, cmd, cfg, in, out)
		},
	}
}

// applyFlags lets explicitly set flags override environment values.
func applyFlags(cmd *cli.Command, cfg *Config) error {
	if cmd.IsSet("headless") {
		cfg.Headless = cmd.Bool("headless")
	}
	if cmd.IsSet("proxy") {
		cfg.Proxy = cmd.String("proxy")
	}
	if cmd.IsSet("region") {
		cfg.DefaultRegion = cmd.String("region")
	}
	if cmd.IsSet("request-timeout") {
		cfg.RequestTimeout = cmd.Duration("request-timeout")
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	return cfg.Validate()
}

func run(ctx context.Context, cmd *cli.Command, cfg Config, in io.Reader, out io.Writer) error {
	zl, logFile, err := setupLogging(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newModuleLogger(zl)

	creds, err := acquireCredentials(ctx, cmd, cfg, in, out, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Login succeeded\nToken: %s\nID: %s\nStarting pipeline...\n",
		shorten(creds.AccessToken, 5), shorten(creds.IDToken, 5))
	if exp, ok := creds.AccessTokenExpiry().Get(); ok {
		logger.Log("Access token expires %s", exp.UTC().Format(time.RFC3339))
	}

	proxyURL := ""
	if cfg.Proxy != "" {
		var display string
		proxyURL, display, _ = parseProxyLine(cfg.Proxy)
		logger.Log("Using proxy: %s", display)
	}

	client, err := NewClient(&transportLogger{logger: zl}, proxyURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	api := NewAPIClient(client, logger, cfg.RequestTimeout)
	pipeline := NewPipeline(api, cfg.Endpoints, cfg.DefaultClientVersion, cfg.DefaultRegion, logger)
	runner := NewRunner(pipeline, cfg.PipelineTimeout, logger)

	results, err := runner.RunPipeline(ctx, creds, func(line string) {
		fmt.Fprintln(out, line)
	})
	if err != nil {
		return err
	}

	res := <-results
	return res.Err
}

func acquireCredentials(ctx context.Context, cmd *cli.Command, cfg Config, in io.Reader, out io.Writer, logger Logger) (Credentials, error) {
	if raw := cmd.String("redirect-url"); raw != "" {
		creds, err := ExtractCredentials(raw)
		if err != nil {
			return Credentials{}, fmt.Errorf("invalid redirect URL: %w", err)
		}
		return creds, nil
	}

	var auth Authenticator
	if cmd.Bool("manual") {
		auth = NewManualLogin(cfg, in, out, logger)
	} else {
		auth = NewAuthBrowser(cfg, logger)
	}

	loginCtx, cancel := context.WithTimeout(ctx, cfg.LoginTimeout)
	defer cancel()
	return auth.Login(loginCtx)
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"shopifyoauth/pkg/config"
	"shopifyoauth/pkg/logger"
	"shopifyoauth/pkg/shopify"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	cmd := &cli.Command{
		Name:   "shopifyauth",
		Usage:  "Shopify OAuth developer tools",
		Writer: out,

		// Exit codes are resolved by the caller so Execute never exits the process.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},

		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-key", Usage: "app client id (default: SHOPIFY_API_KEY)"},
			&cli.StringFlag{Name: "api-secret", Usage: "app shared secret (default: SHOPIFY_API_SECRET)"},
			&cli.StringFlag{Name: "redirect-uri", Usage: "OAuth redirect URI (default: SHOPIFY_REDIRECT_URL)"},
			&cli.DurationFlag{Name: "timeout", Usage: "token exchange timeout (default: SHOPIFY_TIMEOUT)"},
			&cli.BoolFlag{Name: "verbose", Usage: "log the token exchange"},
		},
		Commands: []*cli.Command{
			urlCommand(),
			nonceCommand(),
			signCommand(),
			verifyCommand(),
			exchangeCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// ExitCode maps an Execute error onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// newClient builds a client from config, with root flags taking precedence.
func newClient(cmd *cli.Command) (*shopify.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	opts := cfg.ShopifyOptions()

	root := cmd.Root()
	if root.IsSet("api-key") {
		opts.APIKey = root.String("api-key")
	}
	if root.IsSet("api-secret") {
		opts.SharedSecret = root.String("api-secret")
	}
	if root.IsSet("redirect-uri") {
		opts.RedirectURI = root.String("redirect-uri")
	}
	if root.IsSet("timeout") {
		opts.Timeout = root.Duration("timeout")
	}
	if root.Bool("verbose") {
		opts.Logger = logger.New("dev").Desugar()
	} else {
		opts.Logger = zap.NewNop()
	}

	return shopify.NewClient(opts)
}

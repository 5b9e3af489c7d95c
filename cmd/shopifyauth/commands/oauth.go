package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/urfave/cli/v3"

	"shopifyoauth/pkg/shopify"
)

func urlCommand() *cli.Command {
	return &cli.Command{
		Name:  "url",
		Usage: "Print the authorization URL for a shop",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "shop", Usage: "shop name or myshopify.com domain", Required: true},
			&cli.StringSliceFlag{Name: "scopes", Usage: "scopes to request"},
			&cli.StringFlag{Name: "state", Usage: "state nonce (default: generated)"},
			&cli.StringFlag{Name: "access-mode", Usage: "grant option, e.g. per-user"},
		},
		Action: urlAction,
	}
}

func urlAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	var opts []shopify.AuthURLOption
	if scopes := cmd.StringSlice("scopes"); len(scopes) > 0 {
		opts = append(opts, shopify.WithScopes(scopes...))
	}
	if cmd.IsSet("state") {
		opts = append(opts, shopify.WithState(cmd.String("state")))
	}
	if cmd.IsSet("access-mode") {
		opts = append(opts, shopify.WithAccessMode(cmd.String("access-mode")))
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, client.AuthURL(cmd.String("shop"), opts...))
	return err
}

func nonceCommand() *cli.Command {
	return &cli.Command{
		Name:  "nonce",
		Usage: "Print random state nonces",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Usage: "number of nonces", Value: 1},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for i := int64(0); i < cmd.Int("n"); i++ {
				if _, err := fmt.Fprintln(cmd.Root().Writer, shopify.GenerateNonce()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:      "sign",
		Usage:     "Sign callback parameters the way Shopify does and print the query",
		ArgsUsage: "key=value [key=value ...]",
		Action:    signAction,
	}
}

func signAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	q := url.Values{}
	for _, arg := range cmd.Args().Slice() {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return cli.Exit(fmt.Sprintf("invalid parameter %q, want key=value", arg), 2)
		}
		q.Add(k, v)
	}
	q.Del("hmac")
	q.Set("hmac", client.Sign(q))

	_, err = fmt.Fprintln(cmd.Root().Writer, q.Encode())
	return err
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify the hmac of a callback query string",
		ArgsUsage: "<query string or callback URL>",
		Action:    verifyAction,
	}
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	raw := cmd.Args().First()
	if raw == "" {
		return cli.Exit("missing query string", 2)
	}
	if _, after, ok := strings.Cut(raw, "?"); ok {
		raw = after
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid query string: %v", err), 2)
	}

	if !client.ValidateHMAC(q) {
		return cli.Exit("invalid hmac", 1)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, "valid")
	return err
}

func exchangeCommand() *cli.Command {
	return &cli.Command{
		Name:  "exchange",
		Usage: "Exchange an authorization code for an access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "shop", Usage: "shop domain (host)", Required: true},
			&cli.StringFlag{Name: "code", Usage: "authorization code", Required: true},
		},
		Action: exchangeAction,
	}
}

func exchangeAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	token, err := client.ExchangeToken(ctx, shopify.NormalizeShop(cmd.String("shop")), cmd.String("code"))
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	var pretty map[string]any
	if err := json.Unmarshal(token.Raw, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyonlab/entra-token-util/internal/catalog"
	"github.com/halcyonlab/entra-token-util/internal/config"
	"github.com/halcyonlab/entra-token-util/internal/deviceflow"
	"github.com/halcyonlab/entra-token-util/internal/picker"
	"github.com/halcyonlab/entra-token-util/internal/provider"
	"github.com/halcyonlab/entra-token-util/internal/session"
)

type loginOptions struct {
	clientID    string
	scope       string
	tenant      string
	catalogPath string
	configPath  string
}

func newLoginCmd() *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate interactively and print the resulting tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.clientID, "client-id", "", "client application ID (skips the picker)")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "requested scopes, space-delimited")
	cmd.Flags().StringVar(&opts.tenant, "tenant", "", "Entra tenant (default organizations)")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "path to the application catalog CSV")
	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultPath(), "path to the config file")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *loginOptions) error {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tenant := opts.tenant
	if tenant == "" {
		tenant = cfg.Tenant
	}
	catalogPath := opts.catalogPath
	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}

	app, err := resolveApp(opts, cfg, catalogPath)
	if err != nil {
		return err
	}
	if app == nil {
		fmt.Fprintln(os.Stderr, "no application selected")
		return nil
	}

	scope := opts.scope
	if scope == "" {
		scope = app.Scope
	}
	if scope == "" {
		scope = cfg.DefaultScope
	}
	if scope == "" {
		scope = catalog.DefaultScope
	}

	fmt.Printf("Selected: %s (%s)\n", app.Name, app.ClientID)

	client := provider.NewClient(provider.Config{Tenant: tenant})
	flow := deviceflow.New(client, session.NewMemoryStore())

	ctx := cmd.Context()
	result, err := flow.Start(ctx, app.ClientID, scope)
	if err != nil {
		return fmt.Errorf("starting device flow: %w", err)
	}

	if result.Message != "" {
		fmt.Println(result.Message)
	} else {
		fmt.Printf("Visit %s and enter code %s\n", result.VerificationURI, result.UserCode)
	}
	fmt.Println("Waiting for you to complete authentication in the browser...")

	outcome, err := flow.Wait(ctx, result.SessionID)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			return errors.New("authentication aborted")
		}
		return fmt.Errorf("polling for token: %w", err)
	}

	return printOutcome(outcome)
}

// resolveApp turns the flags and config into a selected application, falling
// back to the interactive picker when no client ID was given.
func resolveApp(opts *loginOptions, cfg config.Config, catalogPath string) (*catalog.App, error) {
	if opts.clientID != "" {
		return &catalog.App{Name: "Custom application", ClientID: opts.clientID}, nil
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	for _, entry := range cfg.Apps {
		cat.AddPinned(catalog.App{Name: entry.Name, ClientID: entry.ClientID, Scope: entry.Scope})
	}

	return picker.Run(cat)
}

func printOutcome(outcome *deviceflow.Outcome) error {
	switch outcome.State {
	case deviceflow.StateAuthorized:
		fmt.Println("\nAccess token acquired.")
		fmt.Printf("\naccess_token:\n%s\n", outcome.Token.AccessToken)
		if outcome.Token.RefreshToken != "" {
			fmt.Printf("\nrefresh_token:\n%s\n", outcome.Token.RefreshToken)
		}
		if outcome.Token.IDToken != "" {
			fmt.Printf("\nid_token:\n%s\n", outcome.Token.IDToken)
		}
		return nil

	case deviceflow.StateExpired:
		return errors.New("device code expired; run login again to restart authentication")

	case deviceflow.StateDenied:
		return fmt.Errorf("authorization failed: %s: %s", outcome.OAuthErr.Code, outcome.OAuthErr.Description)

	default:
		return fmt.Errorf("identity provider returned %d: %s", outcome.StatusCode, outcome.RawBody)
	}
}

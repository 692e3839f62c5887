package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set by the build process via -ldflags "-X main.version=x.y.z".
var version = "dev"

var debug bool

func main() {
	// A local .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "entra-token-util",
		Short:         "Obtain Entra ID tokens via the OAuth 2.0 device authorization grant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newLoginCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

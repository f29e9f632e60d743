// Command storefront is a command line client for the storefront API. The cart lives on disk
// until checkout turns it into an order, which is then paid by card.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/cart"
	"storefront/pkg/storefront"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultAPIURL = "http://localhost:8080/api/v1"
	tokenFile     = "token"
)

var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type cli struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out}

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Shop from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", defaultAPIURL, "Storefront API base URL (env STOREFRONT_API_URL)")
	flags.String("token", "", "Bearer token, defaults to the one saved by login (env STOREFRONT_TOKEN)")
	flags.String("data-dir", defaultDataDir(), "Directory for the local cart and saved token (env STOREFRONT_DATA_DIR)")

	c.v.SetEnvPrefix("storefront")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(flags)

	rootCmd.AddCommand(c.registerCmd())
	rootCmd.AddCommand(c.loginCmd())
	rootCmd.AddCommand(c.productsCmd())
	rootCmd.AddCommand(c.cartCmd())
	rootCmd.AddCommand(c.checkoutCmd())
	rootCmd.AddCommand(c.ordersCmd())
	rootCmd.AddCommand(c.contactCmd())
	return rootCmd
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}

func (c *cli) dataDir() string {
	return c.v.GetString("data-dir")
}

func (c *cli) token() string {
	if t := c.v.GetString("token"); t != "" {
		return t
	}
	data, err := os.ReadFile(filepath.Join(c.dataDir(), tokenFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *cli) saveToken(token string) error {
	if err := os.MkdirAll(c.dataDir(), 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dataDir(), tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (c *cli) client() *storefront.Client {
	return storefront.New(c.v.GetString("api-url"), storefront.WithToken(c.token()))
}

func (c *cli) cartStore(ctx context.Context) (*cart.Store, error) {
	storage, err := cart.NewFileStorage(c.dataDir())
	if err != nil {
		return nil, err
	}
	return cart.NewStore(ctx, storage, cart.DefaultKey)
}

func (c *cli) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

// describe turns API errors into their server message plus any field errors.
func describe(err error) error {
	var apiErr *storefront.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Fields))
	for field, msg := range apiErr.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Errorf("%s (%s)", apiErr.Message, strings.Join(parts, "; "))
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rickgao/mock-auction/internal/api"
)

const envPrefix = "AUCTIONCTL"

// app carries per-invocation settings shared by every command.
type app struct {
	v   *viper.Viper
	out io.Writer
}

// NewRootCommand builds the auctionctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "auctionctl",
		Short: "Operate a mock auction server",
		Long: `auctionctl registers teams, records sales and shows standings on a
running auction server. Mutating commands need the admin secret.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/auctionctl/config.yaml)")
	flags.StringP("server", "s", "http://localhost:8000", "auction server base URL")
	flags.String("secret", "", "admin secret for mutating commands")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	for _, name := range []string{"config", "server", "secret", "timeout"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.teamCommand(),
		a.playerCommand(),
		a.standingsCommand(),
		a.squadCommand(),
		a.tickerCommand(),
		a.resetCommand(),
		a.watchCommand(),
		a.exportCommand(),
		a.healthCommand(),
		a.versionCommand(),
		hashSecretCommand(),
	)

	return root
}

// Execute runs auctionctl.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	a.v.SetConfigName("config")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath("$HOME/.config/auctionctl")
	a.v.AddConfigPath(".")

	// A missing default config file is fine.
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) client() *api.Client {
	return api.NewClient(
		a.v.GetString("server"),
		a.v.GetString("secret"),
		api.WithTimeout(a.v.GetDuration("timeout")),
		api.WithRetries(2, 500*time.Millisecond),
	)
}

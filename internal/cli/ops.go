package cli

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rickgao/mock-auction/internal/api"
	"github.com/rickgao/mock-auction/internal/auth"
	"github.com/rickgao/mock-auction/internal/notify"
	"github.com/rickgao/mock-auction/internal/store"
	"github.com/rickgao/mock-auction/internal/version"
)

func (a *app) resetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every team and player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all auction data; pass --yes to confirm")
			}
			if err := a.client().DeleteAllData(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "All auction data deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

// notificationsURL maps the server base URL to its websocket feed.
func notificationsURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/notifications"
	return u.String(), nil
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print sale popups as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := notificationsURL(a.v.GetString("server"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := notify.DefaultSubscriberConfig()
			cfg.URL = wsURL
			sub := notify.NewSubscriber(cfg, nil)
			if err := sub.Connect(ctx); err != nil {
				return fmt.Errorf("connect %s: %w", wsURL, err)
			}
			defer sub.Close()

			fmt.Fprintln(a.out, mutedStyle.Render("watching "+wsURL))
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-sub.Errors():
					return fmt.Errorf("notification feed: %w", err)
				case ev, ok := <-sub.Events():
					if !ok {
						return nil
					}
					fmt.Fprintln(a.out, popupStyle.Render(ev.Message))
				}
			}
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "export <teams|players>",
		Short:     "Download the teams or players sheet as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"teams", "players"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var file string
			switch args[0] {
			case "teams":
				file = store.TeamsFile
			case "players":
				file = store.PlayersFile
			default:
				return fmt.Errorf("unknown sheet %q: want teams or players", args[0])
			}

			data, err := a.client().ExportCSV(cmd.Context(), file)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = a.out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(a.out, "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := a.client().Health(cmd.Context())
			if health == nil {
				return err
			}

			fmt.Fprintf(a.out, "Status: %s\n", health.Status)
			for _, name := range []string{"store", "auction", "writer", "notifications"} {
				if raw, ok := health.Components[name]; ok {
					fmt.Fprintf(a.out, "  %s: %s\n", name, raw)
				}
			}
			return err
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show client and server versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			fmt.Fprintf(a.out, "auctionctl %s (commit %s, %s)\n", info.Version, info.Commit, info.GoVersion)

			srv, err := a.client().Version(cmd.Context())
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) {
					return err
				}
				fmt.Fprintln(a.out, mutedStyle.Render("server unreachable"))
				return nil
			}
			fmt.Fprintf(a.out, "server %s %s (commit %s)\n", srv.InstanceID, srv.Version, srv.Commit)
			return nil
		},
	}
}

func hashSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print a bcrypt hash for admin.secret_hash",
		Long: `Hash an admin secret for the server's admin.secret_hash setting. The
secret is read from the first line of stdin when not given as an argument.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if secret == "" {
				return errors.New("secret cannot be empty")
			}

			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

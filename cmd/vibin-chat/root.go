package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vibin/chat"
	"vibin/client"
	"vibin/config"
	"vibin/logger"
)

// app is what every subcommand needs once flags and config are resolved.
type app struct {
	cfg   *config.Config
	store *client.Store
}

func (a *app) messenger(live chat.LiveChannel) *chat.Messenger {
	return chat.NewMessenger(a.store, live, a.cfg.Chat)
}

func (a *app) user() string { return a.cfg.Client.UserID }

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "vibin-chat",
		Short:         "Chat with your vibin matches from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(v, v.GetString("config")); err != nil {
				return errors.Wrap(err, "load config")
			}
			cfg, err := config.ParseConfig(v)
			if err != nil {
				return errors.Wrap(err, "parse config")
			}
			if cfg.Client.UserID == "" {
				return errors.New("no user: pass --user or set VIBIN_CLIENT_USERID")
			}
			logger.Setup(cfg.Logger)
			a.cfg = cfg
			a.store = client.NewStore(cfg.Client)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "vibin", "config file name (without extension)")
	v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().StringP("user", "u", "", "your user handle")
	v.BindPFlag("client.userID", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringP("server", "s", "", "API base URL")
	v.BindPFlag("client.baseURL", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().StringP("logLevel", "v", "", "log level (debug, info, warn, error)")
	v.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("logLevel"))

	rootCmd.AddCommand(
		newInboxCmd(v, a),
		newHistoryCmd(a),
		newSendCmd(a),
		newOpenCmd(a),
	)
	return rootCmd
}

func withTimeout(cmd *cobra.Command, a *app) (context.Context, context.CancelFunc) {
	timeout := a.cfg.Client.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

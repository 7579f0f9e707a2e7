package main

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"tg-support-bot/internal/adapters/bot"
	"tg-support-bot/internal/adapters/telegram"
	"tg-support-bot/internal/infra/config"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook",
	}
	cmd.AddCommand(newWebhookSetCmd())
	cmd.AddCommand(newWebhookDeleteCmd())
	cmd.AddCommand(newWebhookInfoCmd())
	return cmd
}

func newWebhookSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Register the webhook and the command menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, api, err := connect()
			if err != nil {
				return err
			}
			external, _ := cmd.Flags().GetString("external-url")
			if external == "" {
				external = cfg.Telegram.ExternalURL
			}
			if external == "" {
				return errors.New("external url is not set (use --external-url or RENDER_EXTERNAL_URL)")
			}
			webhookURL, err := telegram.WebhookURL(external, cfg.Telegram.Token)
			if err != nil {
				return err
			}
			if err := bot.Register(api, webhookURL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "webhook registered for @%s\n", api.Self.UserName)
			return nil
		},
	}
	cmd.Flags().String("external-url", "", "Public base URL, overrides RENDER_EXTERNAL_URL.")
	return cmd
}

func newWebhookDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := connect()
			if err != nil {
				return err
			}
			drop, _ := cmd.Flags().GetBool("drop-pending")
			if err := bot.Unregister(api, drop); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return nil
		},
	}
	cmd.Flags().Bool("drop-pending", false, "Drop updates queued on Telegram's side.")
	return cmd
}

func newWebhookInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook status",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := connect()
			if err != nil {
				return err
			}
			info, err := api.GetWebhookInfo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "url:\t%s\n", redact(info.URL))
			fmt.Fprintf(out, "pending:\t%d\n", info.PendingUpdateCount)
			if info.LastErrorMessage != "" {
				fmt.Fprintf(out, "last error:\t%s\n", info.LastErrorMessage)
			}
			return nil
		},
	}
}

func connect() (config.AppConfig, *tgbotapi.BotAPI, error) {
	cfg, err := config.Parse()
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return config.AppConfig{}, nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return cfg, api, nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/shiftboard/internal/config"
	"github.com/zulandar/shiftboard/internal/notify"
	"github.com/zulandar/shiftboard/internal/notify/discord"
	"github.com/zulandar/shiftboard/internal/notify/slack"
	"gorm.io/gorm"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Daily production digest commands",
	}

	cmd.AddCommand(newDigestSendCmd())
	return cmd
}

func newDigestSendCmd() *cobra.Command {
	var (
		configPath string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Post the daily digest now",
		Long: `Posts each plant's production summary for one day to the configured
Slack and Discord channels. Defaults to yesterday (UTC).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestSend(cmd, configPath, date)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	cmd.Flags().StringVar(&date, "date", "", "day to report, YYYY-MM-DD (default yesterday)")
	return cmd
}

func runDigestSend(cmd *cobra.Command, configPath, date string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	d, err := newDigest(cfg, gormDB)
	if err != nil {
		return err
	}
	if date == "" {
		date = d.Yesterday()
	}

	n, err := d.Send(cmd.Context(), date)
	fmt.Fprintf(cmd.OutOrStdout(), "Digest for %s posted for %d plant(s)\n", date, n)
	return err
}

// newDigest wires a notifier for every configured chat platform.
func newDigest(cfg *config.Config, gormDB *gorm.DB) (*notify.Digest, error) {
	var notifiers []notify.Notifier
	if c := cfg.Digest.Slack; c.Enabled() {
		n, err := slack.New(c.BotToken, c.ChannelID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if c := cfg.Digest.Discord; c.Enabled() {
		n, err := discord.New(c.BotToken, c.ChannelID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("digest: no chat platform configured (digest.slack or digest.discord)")
	}
	return &notify.Digest{DB: gormDB, Notifiers: notifiers}, nil
}

// runDigestSchedule posts the digest on cfg's cron schedule until ctx ends.
func runDigestSchedule(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) error {
	d, err := newDigest(cfg, gormDB)
	if err != nil {
		return err
	}
	return notify.Schedule(ctx, cfg.Digest.Schedule, d.Run)
}

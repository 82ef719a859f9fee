package main

import (
	"strings"
	"testing"

	"github.com/zulandar/shiftboard/internal/config"
)

func TestNewDigest_WiresConfiguredPlatforms(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DigestConfig
		want []string
	}{
		{"slack only", config.DigestConfig{Slack: config.ChannelConfig{BotToken: "xoxb", ChannelID: "C1"}}, []string{"slack"}},
		{"discord only", config.DigestConfig{Discord: config.ChannelConfig{BotToken: "tok", ChannelID: "42"}}, []string{"discord"}},
		{"both", config.DigestConfig{
			Slack:   config.ChannelConfig{BotToken: "xoxb", ChannelID: "C1"},
			Discord: config.ChannelConfig{BotToken: "tok", ChannelID: "42"},
		}, []string{"slack", "discord"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := newDigest(&config.Config{Digest: tt.cfg}, nil)
			if err != nil {
				t.Fatalf("newDigest: %v", err)
			}
			if len(d.Notifiers) != len(tt.want) {
				t.Fatalf("notifiers = %d, want %d", len(d.Notifiers), len(tt.want))
			}
			for i, n := range d.Notifiers {
				if n.Name() != tt.want[i] {
					t.Errorf("notifier %d = %q, want %q", i, n.Name(), tt.want[i])
				}
			}
		})
	}
}

func TestNewDigest_NoPlatforms(t *testing.T) {
	// A half-configured channel does not count.
	cfg := &config.Config{Digest: config.DigestConfig{Slack: config.ChannelConfig{BotToken: "xoxb"}}}
	if _, err := newDigest(cfg, nil); err == nil {
		t.Fatal("expected error with no platform configured")
	}
}

func TestDigestSend_NoPlatforms(t *testing.T) {
	cfgPath := initDB(t)

	_, err := run(t, "", "digest", "send", "-c", cfgPath, "--date", "2025-03-10")
	if err == nil || !strings.Contains(err.Error(), "no chat platform configured") {
		t.Errorf("err = %v", err)
	}
}

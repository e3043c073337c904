package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestFlagToEnvVar(t *testing.T) {
	tests := map[string]string{
		"discord-token":          "BORGIR_DISCORD_TOKEN",
		"command-channel":        "BORGIR_COMMAND_CHANNEL",
		"flood-limit-per-minute": "BORGIR_FLOOD_LIMIT_PER_MINUTE",
	}
	for flag, want := range tests {
		if got := flagToEnvVar(flag); got != want {
			t.Errorf("flagToEnvVar(%q) = %q, want %q", flag, got, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "flags", in: []string{"play", "help"}, want: []string{"play", "help"}},
		{name: "env value", in: []string{"Play, help"}, want: []string{"play", "help"}},
		{name: "empty items", in: []string{"play,,", " "}, want: []string{"play"}},
		{name: "none", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateEnvExampleContent(t *testing.T) {
	content := generateEnvExampleContent(rootCmd)

	for _, flag := range []string{
		"discord-token", "guild-name", "command-channel", "command-prefix", "extensions",
		"ytdlp-path", "ffmpeg-path", "install-ytdlp", "resolve-timeout-secs", "song-cache-size",
		"playlist-capacity", "poll-interval-ms", "language", "flood-limit-per-minute",
		"server-host", "server-port", "log-level",
	} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Flag --%s is not registered", flag)
		}
		if !strings.Contains(content, flagToEnvVar(flag)+"=") {
			t.Errorf("Expected .env.example to document %s", flagToEnvVar(flag))
		}
	}

	if !strings.Contains(content, "BORGIR_EXTENSIONS=play,help") {
		t.Errorf("Expected extensions default to be rendered as a list, got:\n%s", content)
	}
}

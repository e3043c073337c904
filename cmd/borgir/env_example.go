package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"borgir/internal/i18n"
)

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# borgir Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	generateDiscordSection(&content, cmd)
	generateMediaSection(&content, cmd)
	generatePlayerSection(&content, cmd)
	generateAppSection(&content, cmd)
	generateServerSection(&content, cmd)
	generateLoggingSection(&content, cmd)
	generateSetupSteps(&content)

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

func getDefaultValueString(cmd *cobra.Command, flagName string) string {
	if f := cmd.PersistentFlags().Lookup(flagName); f != nil {
		return strings.Trim(f.DefValue, "[]")
	}
	return ""
}

func writeSectionHeader(content *strings.Builder, title, cli string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: %s\n", cli)
}

func generateDiscordSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Discord (Required)", "--discord-token, --guild-name, --command-channel, --command-prefix, --extensions")

	prefixDefault := getDefaultValueString(cmd, "command-prefix")
	extensionsDefault := getDefaultValueString(cmd, "extensions")

	fmt.Fprintf(content, "%s=your_bot_token_here          # Bot token from the Discord developer portal\n",
		flagToEnvVar("discord-token"))
	fmt.Fprintf(content, "%s=                              # Server name (default: first server the bot is in)\n",
		flagToEnvVar("guild-name"))
	fmt.Fprintf(content, "%s=music                    # Text channel commands are read from\n",
		flagToEnvVar("command-channel"))
	fmt.Fprintf(content, "%s=%s                           # Command prefix (default: %s)\n",
		flagToEnvVar("command-prefix"), prefixDefault, prefixDefault)
	fmt.Fprintf(content, "%s=%s                  # Command sets to load (default: %s)\n",
		flagToEnvVar("extensions"), extensionsDefault, extensionsDefault)
	content.WriteString("\n")
}

func generateMediaSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Media Tools", "--ytdlp-path, --ffmpeg-path, --install-ytdlp, --resolve-timeout-secs, --song-cache-size")

	ffmpegDefault := getDefaultValueString(cmd, "ffmpeg-path")
	installDefault := getDefaultValueString(cmd, "install-ytdlp")
	timeoutDefault := getDefaultValueString(cmd, "resolve-timeout-secs")
	cacheDefault := getDefaultValueString(cmd, "song-cache-size")

	fmt.Fprintf(content, "%s=                              # yt-dlp executable (default: yt-dlp from PATH)\n",
		flagToEnvVar("ytdlp-path"))
	fmt.Fprintf(content, "%s=%s                        # ffmpeg executable (default: %s)\n",
		flagToEnvVar("ffmpeg-path"), ffmpegDefault, ffmpegDefault)
	fmt.Fprintf(content, "%s=%s                         # Download yt-dlp when missing (default: %s)\n",
		flagToEnvVar("install-ytdlp"), installDefault, installDefault)
	fmt.Fprintf(content, "%s=%s                     # Metadata lookup timeout, 0=none (default: %s)\n",
		flagToEnvVar("resolve-timeout-secs"), timeoutDefault, timeoutDefault)
	fmt.Fprintf(content, "%s=%s                         # Resolved songs kept in memory (default: %s)\n",
		flagToEnvVar("song-cache-size"), cacheDefault, cacheDefault)
	content.WriteString("\n")
}

func generatePlayerSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Playback", "--playlist-capacity, --poll-interval-ms")

	capacityDefault := getDefaultValueString(cmd, "playlist-capacity")
	pollDefault := getDefaultValueString(cmd, "poll-interval-ms")

	fmt.Fprintf(content, "%s=%s                         # Maximum queued songs, 0=unbounded (default: %s)\n",
		flagToEnvVar("playlist-capacity"), capacityDefault, capacityDefault)
	fmt.Fprintf(content, "%s=%s                        # End-of-song check interval (default: %s)\n",
		flagToEnvVar("poll-interval-ms"), pollDefault, pollDefault)
	content.WriteString("\n")
}

func generateAppSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Localization and Flood Prevention", "--language, --flood-limit-per-minute")

	langDefault := getDefaultValueString(cmd, "language")
	floodDefault := getDefaultValueString(cmd, "flood-limit-per-minute")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")

	fmt.Fprintf(content, "%s=%s                                # Bot language: %s (default: %s)\n",
		flagToEnvVar("language"), langDefault, supportedLangs, langDefault)
	fmt.Fprintf(content, "%s=%s                  # Max commands per user per minute, 0=disabled (default: %s)\n",
		flagToEnvVar("flood-limit-per-minute"), floodDefault, floodDefault)
	content.WriteString("\n")
}

func generateServerSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "HTTP Server Configuration", "--server-host, --server-port")

	hostDefault := getDefaultValueString(cmd, "server-host")
	portDefault := getDefaultValueString(cmd, "server-port")

	fmt.Fprintf(content, "%s=%s                         # Server bind address (default: %s)\n",
		flagToEnvVar("server-host"), "127.0.0.1", hostDefault)
	fmt.Fprintf(content, "%s=%s                              # Server port (default: %s)\n",
		flagToEnvVar("server-port"), portDefault, portDefault)
	content.WriteString("\n")
}

func generateLoggingSection(content *strings.Builder, cmd *cobra.Command) {
	writeSectionHeader(content, "Logging Configuration", "--log-level")

	logDefault := getDefaultValueString(cmd, "log-level")

	fmt.Fprintf(content, "%s=%s                                # Log level: debug, info, warn, error (default: %s)\n",
		flagToEnvVar("log-level"), logDefault, logDefault)
	content.WriteString("\n")
}

func generateSetupSteps(content *strings.Builder) {
	content.WriteString("# =============================================================================\n")
	content.WriteString("# QUICK SETUP GUIDE\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# 1. Create an application at https://discord.com/developers/applications\n")
	content.WriteString("#    - Add a bot, enable the Message Content intent, copy its token above\n")
	content.WriteString("#    - Invite it with the Send Messages, Connect and Speak permissions\n")
	content.WriteString("# 2. Install ffmpeg with libopus, and yt-dlp (or set the install option above)\n")
	content.WriteString("# 3. go run ./cmd/borgir --log-level=debug\n")
}

// Package text provides command parsing and URL cleanup for chat messages.
package text

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultPrefix is the command prefix used when none is configured.
const DefaultPrefix = "!"

var (
	urlRegex        = regexp.MustCompile(`https?://\S+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)

	trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "si", "feature"}
)

// Command is a parsed chat command: prefix + name + optional string argument.
type Command struct {
	Name string
	Arg  string
	URLs []string
}

type Parser struct {
	prefix string
}

func NewParser(prefix string) *Parser {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Parser{prefix: prefix}
}

// Prefix returns the configured command prefix.
func (p *Parser) Prefix() string {
	return p.prefix
}

// ParseCommand splits a message into a command name and its argument.
// It returns false when the message is not addressed to the bot.
func (p *Parser) ParseCommand(text string) (Command, bool) {
	text = p.normalizeText(text)
	if !strings.HasPrefix(text, p.prefix) {
		return Command{}, false
	}

	body := strings.TrimSpace(strings.TrimPrefix(text, p.prefix))
	if body == "" {
		return Command{}, false
	}

	name, arg, _ := strings.Cut(body, " ")
	cmd := Command{
		Name: strings.ToLower(name),
		Arg:  strings.TrimSpace(arg),
		URLs: p.extractURLs(arg),
	}
	return cmd, true
}

func (p *Parser) normalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = norm.NFKC.String(text)
	return whitespaceRegex.ReplaceAllString(text, " ")
}

func (p *Parser) extractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	var cleanURLs []string

	for _, match := range matches {
		if cleanURL := CleanURL(match); cleanURL != "" {
			cleanURLs = append(cleanURLs, cleanURL)
		}
	}

	return cleanURLs
}

// CleanURL strips trailing punctuation, Discord's <> link suppression and
// tracking query parameters. It returns "" for anything that is not an
// absolute http(s) URL.
func CleanURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	rawURL = strings.TrimPrefix(rawURL, "<")
	rawURL = strings.TrimRight(rawURL, ">.,!?;")

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}

	q := u.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// YouTubeOEmbedURL is the YouTube oEmbed API endpoint.
const YouTubeOEmbedURL = "https://www.youtube.com/oembed"

// YouTubeResolver resolves YouTube and YouTube Music links.
type YouTubeResolver struct {
	client   *http.Client
	endpoint string
}

// NewYouTubeResolver creates a new YouTube link resolver.
func NewYouTubeResolver() *YouTubeResolver {
	return &YouTubeResolver{
		client:   newHTTPClient(),
		endpoint: YouTubeOEmbedURL,
	}
}

// CanResolve checks if the URL is a YouTube or YouTube Music link.
func (r *YouTubeResolver) CanResolve(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// Resolve fetches the video title and channel through the oEmbed API.
func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (*TrackInfo, error) {
	if !r.CanResolve(rawURL) {
		return nil, errors.New("not a YouTube URL")
	}

	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract video ID: %w", err)
	}

	resp, err := fetchOEmbed(ctx, r.client, r.endpoint, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}

	return &TrackInfo{
		Title:  strings.TrimSpace(resp.Title),
		Author: strings.TrimSpace(strings.TrimSuffix(resp.AuthorName, " - Topic")),
	}, nil
}

// ExtractVideoID extracts the YouTube video ID from watch, shorts and youtu.be URLs.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(u.Hostname(), "youtu.be") {
		path := strings.Trim(u.Path, "/")
		if path == "" {
			return "", errors.New("no video ID in youtu.be URL")
		}
		return path, nil
	}

	if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && rest != "" {
		return strings.Trim(rest, "/"), nil
	}

	videoID := u.Query().Get("v")
	if videoID == "" {
		return "", errors.New("no video ID in YouTube URL")
	}
	return videoID, nil
}

package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SoundCloudOEmbedURL is the SoundCloud oEmbed API endpoint.
const SoundCloudOEmbedURL = "https://soundcloud.com/oembed"

// SoundCloudResolver resolves SoundCloud links.
type SoundCloudResolver struct {
	client   *http.Client
	endpoint string
}

// NewSoundCloudResolver creates a new SoundCloud link resolver.
func NewSoundCloudResolver() *SoundCloudResolver {
	return &SoundCloudResolver{
		client:   newHTTPClient(),
		endpoint: SoundCloudOEmbedURL,
	}
}

// CanResolve checks if the URL is a SoundCloud link.
func (r *SoundCloudResolver) CanResolve(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com", "on.soundcloud.com":
		return true
	}
	return false
}

// Resolve fetches track metadata through the SoundCloud oEmbed API.
func (r *SoundCloudResolver) Resolve(ctx context.Context, rawURL string) (*TrackInfo, error) {
	if !r.CanResolve(rawURL) {
		return nil, errors.New("not a SoundCloud URL")
	}

	resp, err := fetchOEmbed(ctx, r.client, r.endpoint, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}

	return parseSoundCloudTitle(resp), nil
}

// parseSoundCloudTitle splits SoundCloud's "Track Title by Artist Name" format.
func parseSoundCloudTitle(resp *oEmbedResponse) *TrackInfo {
	if title, author, ok := strings.Cut(resp.Title, " by "); ok {
		return &TrackInfo{
			Title:  strings.TrimSpace(title),
			Author: strings.TrimSpace(author),
		}
	}

	return &TrackInfo{
		Title:  strings.TrimSpace(resp.Title),
		Author: strings.TrimSpace(resp.AuthorName),
	}
}

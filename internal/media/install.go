package media

import (
	"context"
	"fmt"

	"github.com/lrstanley/go-ytdlp"
)

// InstallDownloader makes sure a yt-dlp binary is available, downloading it into the
// user cache directory when needed, and returns its path.
func InstallDownloader(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}

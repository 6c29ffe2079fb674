package hal

import (
	"context"
	"io"

	"github.com/pkg/browser"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// BrowserNavigator opens URLs in the system browser.
type BrowserNavigator struct{}

var _ core.Navigator = BrowserNavigator{}

func init() {
	// xdg-open and friends are chatty on stdout, which the console view owns.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

func (BrowserNavigator) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("Opening browser", "url", url)
	return browser.OpenURL(url)
}

// LogNavigator only logs the URL, for headless hosts.
type LogNavigator struct{}

var _ core.Navigator = LogNavigator{}

func (LogNavigator) Open(_ context.Context, url string) error {
	log.Info("Open URL", "url", url)
	return nil
}

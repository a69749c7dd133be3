// Package shell talks to the desktop: the native folder chooser and the
// user's browser, which hosts the UI windows.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ncruces/zenity"
	"github.com/pkg/browser"
)

// ErrCanceled is returned by PickFolder when the user dismisses the dialog.
var ErrCanceled = errors.New("shell: dialog canceled")

// Desktop opens native dialogs and browser windows.
type Desktop struct {
	// BaseURL is where the UI is served, e.g. http://127.0.0.1:4317/.
	BaseURL string

	selectDir func(ctx context.Context, title string) (string, error)
	openURL   func(u string) error
}

func NewDesktop(baseURL string) *Desktop {
	return &Desktop{
		BaseURL:   baseURL,
		selectDir: zenitySelectDir,
		openURL:   browser.OpenURL,
	}
}

func zenitySelectDir(ctx context.Context, title string) (string, error) {
	path, err := zenity.SelectFile(zenity.Context(ctx), zenity.Directory(), zenity.Title(title))
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrCanceled
	}
	return path, err
}

// PickFolder shows the OS directory chooser and returns the absolute path.
func (d *Desktop) PickFolder(ctx context.Context) (string, error) {
	path, err := d.selectDir(ctx, "Select PDF folder")
	if err != nil {
		return "", err
	}
	return path, nil
}

// OpenWindow opens the UI in a new browser window with arg as the fragment.
func (d *Desktop) OpenWindow(arg string) error {
	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return fmt.Errorf("shell: bad base URL: %w", err)
	}
	u.Fragment = arg
	return d.openURL(u.String())
}

package shared

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommands maps GOOS to the launcher that opens a URL in the default browser.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// browserCommand returns the launcher for goos with url appended.
func browserCommand(goos, url string) ([]string, error) {
	launcher, ok := browserCommands[goos]
	if !ok {
		return nil, fmt.Errorf("%w: no browser launcher for %s", ErrServiceUnavailable, goos)
	}
	return append(append([]string(nil), launcher...), url), nil
}

// OpenBrowser starts the system browser on url without waiting for it to exit.
func OpenBrowser(ctx context.Context, url string) error {
	args, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := exec.CommandContext(ctx, args[0], args[1:]...).Start(); err != nil {
		return fmt.Errorf("%w: failed to open browser: %v", ErrServiceUnavailable, err)
	}
	return nil
}

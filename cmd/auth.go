package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/songshift/internal/server"
	"github.com/desertthunder/songshift/internal/services"
	"github.com/desertthunder/songshift/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and saves the exchanged token
// to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.newSpotifyService()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, svc, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: songshift export\n")
	return nil
}

// doOAuth captures one authorization redirect and exchanges its code.
func (r *Runner) doOAuth(ctx context.Context, svc *services.SpotifyService, openBrowser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	path, err := callbackPath(svc.OAuthConfig().RedirectURL)
	if err != nil {
		return nil, err
	}

	handler := server.NewOAuthHandler(path, state, svc.Exchange)
	authURL := svc.AuthURL(state)
	timeout := r.config.Auth.Timeout()

	ready := func(addr string) error {
		r.logger.Info("waiting for authorization callback", "addr", addr, "timeout", timeout)
		r.writePlain("Open this URL to authorize songshift:\n\n%s\n\n", authURL)
		if openBrowser {
			if err := shared.OpenBrowser(ctx, authURL); err != nil {
				r.logger.Warn("could not open browser", "error", err)
			}
		}
		return nil
	}

	token, err := server.Capture(ctx, r.config.Server.Addr(), handler, timeout, r.logger, ready)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// callbackPath returns the path of the redirect URI the callback server must serve.
func callbackPath(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}
	if u.Path == "" {
		return "/", nil
	}
	return u.Path, nil
}

// Package calendar publishes schedules to Google Calendar.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/twiced-technology-gmbh/goalplan/internal/clierr"
)

// LocalhostAuthPort is the port the local redirect listener binds during authorization.
const LocalhostAuthPort = "6789"

const authTimeout = 5 * time.Minute

// Scopes are the OAuth scopes goalplan requests.
var Scopes = []string{
	gcal.CalendarEventsScope,
	gcal.CalendarReadonlyScope,
}

// LoadConfig reads an OAuth client secret file and points its redirect at
// the local listener.
func LoadConfig(credentialsPath string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsPath) //nolint:gosec // path from workspace config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, clierr.Newf(clierr.CalendarAuthNeeded,
				"client secret file %s not found (download it from the Google Cloud console)", credentialsPath).
				WithDetails(map[string]any{"credentials_file": credentialsPath})
		}
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret file: %w", err)
	}
	cfg.RedirectURL = localRedirect(cfg.RedirectURL)
	return cfg, nil
}

// localRedirect forces the redirect URL onto LocalhostAuthPort. Out-of-band
// and missing redirects become the localhost callback.
func localRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || raw == "urn:ietf:wg:oauth:2.0:oob" ||
		(u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1") {
		return "http://localhost:" + LocalhostAuthPort + "/oauth2callback"
	}
	u.Host = u.Hostname() + ":" + LocalhostAuthPort
	return u.String()
}

// LoadToken reads a cached OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) //nolint:gosec // path from workspace config
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token from %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes tok to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Authorize runs the browser authorization flow: it prints the consent URL
// to out, waits for Google to redirect to the local listener, and exchanges
// the code for a token.
func Authorize(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	u, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URL: %w", err)
	}
	listener, err := net.Listen("tcp", "localhost:"+u.Port())
	if err != nil {
		return nil, fmt.Errorf("starting listener on port %s: %w", u.Port(), err)
	}
	defer listener.Close()

	state := fmt.Sprintf("goalplan-%d", time.Now().UnixNano())
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "authorization code not found", http.StatusBadRequest)
				errCh <- errors.New("authorization code not found in redirect URL")
				return
			}
			fmt.Fprint(w, "goalplan is authorized. You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("redirect listener: %w", err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(out, "Open this URL in your browser to authorize goalplan:\n%s\n", authURL)
	zap.L().Debug("waiting for oauth redirect", zap.String("redirect", cfg.RedirectURL))

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization: %w", ctx.Err())
	}
}

// NewService returns a Calendar API client authorized with the cached token.
// It never starts the browser flow; a missing token is CALENDAR_AUTH_REQUIRED.
func NewService(ctx context.Context, credentialsPath, tokenPath string) (*gcal.Service, error) {
	cfg, err := LoadConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, clierr.New(clierr.CalendarAuthNeeded,
			"no calendar token found (run 'goalplan calendar auth' first)").
			WithDetails(map[string]any{"token_file": tokenPath})
	}

	src := &savingSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenPath,
		last: tok.AccessToken,
	}
	client := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

// savingSource persists refreshed tokens so the next run starts with them.
type savingSource struct {
	base oauth2.TokenSource
	path string
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			zap.L().Warn("could not save refreshed token", zap.String("path", s.path), zap.Error(err))
		}
	}
	return tok, nil
}

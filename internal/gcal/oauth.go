package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// CallbackPort is where the local server waits for the OAuth redirect.
const CallbackPort = "6789"

// Scopes needed to find the calendar and write its events.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// LoadConfig reads a Google "installed app" credentials file. Any localhost
// or out-of-band redirect is pinned to CallbackPort.
func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", credentialsFile, err)
	}

	cfg, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	if cfg.RedirectURL == "urn:ietf:wg:oauth:2.0:oob" || cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:" + CallbackPort + "/oauth2callback"
		return cfg, nil
	}
	u, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		log.Printf("[WARN] could not parse redirect url %q: %v", cfg.RedirectURL, err)
		return cfg, nil
	}
	if h := u.Hostname(); h == "localhost" || h == "127.0.0.1" {
		u.Host = net.JoinHostPort(h, CallbackPort)
		cfg.RedirectURL = u.String()
	}
	return cfg, nil
}

// HTTPClient returns a client authorised for Scopes. A cached token in
// tokenFile is reused; otherwise the browser flow runs and the instructions go
// to out. Refreshed tokens are written back to tokenFile.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, tokenFile string, out io.Writer) (*http.Client, error) {
	tok, err := readToken(tokenFile)
	if err != nil {
		log.Printf("No usable token at %s, starting web authorization", tokenFile)
		tok, err = tokenFromWeb(ctx, cfg, out)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := writeToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	src := &savingSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenFile,
		last: tok,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// savingSource persists a token whenever the underlying source hands out a
// different one.
type savingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || tok.AccessToken != s.last.AccessToken || tok.RefreshToken != s.last.RefreshToken {
		if err := writeToken(s.path, tok); err != nil {
			log.Printf("[WARN] %v", err)
		}
		s.last = tok
	}
	return tok, nil
}

func tokenFromWeb(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:"+CallbackPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", CallbackPort, err)
	}

	state := fmt.Sprintf("planner-%d", time.Now().UnixNano())
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
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				select {
				case errCh <- errors.New("authorization code not found in redirect URL"):
				default:
				}
				return
			}
			fmt.Fprint(w, "Authentication successful! You can close this window.")
			select {
			case codeCh <- code:
			default:
			}
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	defer server.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(out, "Open the following URL in your browser to authorize the planner:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		exCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, errors.New("authorization timed out, please try again")
	}
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

package webui

import (
	"context"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skratchdot/open-golang/open"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var completionPage = template.Must(template.New("completion").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}}</title></head>
<body><h2>{{.Title}}</h2><p>{{.Message}}</p></body></html>`))

// Browser opens the system browser and receives the redirect on a loopback listener bound to
// the redirect URI's host and port. Both query string and form_post redirects are accepted.
type Browser struct {
	opener func(string) error
	logger zerolog.Logger
}

var _ WebUI = (*Browser)(nil)

type BrowserOption func(*Browser)

// WithOpener replaces the function that shows the authorization URI to the user.
func WithOpener(opener func(string) error) BrowserOption {
	return func(b *Browser) {
		b.opener = opener
	}
}

func WithBrowserLogger(logger zerolog.Logger) BrowserOption {
	return func(b *Browser) {
		b.logger = logger
	}
}

func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		opener: open.Run,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Browser) Challenge(ctx context.Context, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error) {
	redirect, err := loopbackRedirect(redirectURI)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, errors.Wrap(err, "[Browser.Challenge] listening on "+redirect.Host)
	}

	results := make(chan *oauthmodel.AuthorizationResponse, 1)
	srv := &http.Server{
		Handler:           b.callbackHandler(redirect.Path, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var resp *oauthmodel.AuthorizationResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "[Browser.Challenge] callback listener")
		}
		return nil
	})
	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		select {
		case resp = <-results:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	if err := b.opener(authorizationURI); err != nil {
		b.logger.Warn().Err(err).Str("url", authorizationURI).Msg("could not open the system browser, open the url manually")
	}

	err = g.Wait()
	if resp != nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, interrupted(ctx)
	}
	return nil, err
}

func (b *Browser) callbackHandler(path string, results chan<- *oauthmodel.AuthorizationResponse) http.Handler {
	if path == "" {
		path = "/"
	}
	return chainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed redirect", http.StatusBadRequest)
			return
		}
		resp := oauthmodel.ParseAuthorizationResponse(r.Form)

		page := struct{ Title, Message string }{
			Title:   "Authentication complete",
			Message: "You can close this window and return to the application.",
		}
		if resp.Status != oauthmodel.AuthorizationSuccess {
			page.Title = "Authentication failed"
			page.Message = resp.Error + ": " + resp.ErrorDescription
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := completionPage.Execute(w, page); err != nil {
			b.logger.Err(err).Msg("writing completion page")
		}

		select {
		case results <- resp:
		default:
		}
	}, loggingMiddleware(b.logger), recoverMiddleware(b.logger), noStoreMiddleware)
}

// loopbackRedirect accepts http redirect URIs on a loopback host with an explicit port.
func loopbackRedirect(redirectURI string) (*url.URL, error) {
	u, err := oauthmodel.ParseRedirectURI(redirectURI)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" || u.Port() == "" {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRedirectURI,
			"browser challenge needs an http loopback redirect uri with a port: "+redirectURI)
	}
	host := strings.ToLower(u.Hostname())
	if host != "localhost" {
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRedirectURI,
				"browser challenge needs a loopback redirect uri: "+redirectURI)
		}
	}
	return u, nil
}

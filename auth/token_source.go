package auth

import (
	"context"

	xoauth2 "golang.org/x/oauth2"
)

type tokenSource struct {
	ctx      context.Context
	acquirer *Acquirer
	req      Request
}

// TokenSource returns an oauth2.TokenSource backed by silent acquisition, so an *http.Client
// built with oauth2.NewClient keeps a valid bearer token without user interaction.
func (a *Acquirer) TokenSource(ctx context.Context, req Request) xoauth2.TokenSource {
	return xoauth2.ReuseTokenSource(nil, &tokenSource{ctx: ctx, acquirer: a, req: req})
}

func (ts *tokenSource) Token() (*xoauth2.Token, error) {
	result, err := ts.acquirer.AcquireTokenSilent(ts.ctx, ts.req)
	if err != nil {
		return nil, err
	}
	return result.OAuth2Token(), nil
}

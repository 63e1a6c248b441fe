package endpoint

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultHTTPTimeout bounds a single token endpoint round trip.
	DefaultHTTPTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// outageStatusCodes are the statuses that mark the service as temporarily unavailable. A refresh
// failing with one of them may fall back to an extended-lifetime cached token.
var outageStatusCodes = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsOutageStatus reports whether status is classified as a service outage.
func IsOutageStatus(status int) bool {
	return outageStatusCodes[status]
}

// Client posts token requests and classifies failures into the oauthmodel taxonomy.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exchange sends req to tokenEndpoint as a form POST and returns the parsed response.
//
// Failures are always *oauthmodel.Error:
//   - transport failure, timeout or cancellation: NetworkUnavailable
//   - 500, 502, 503, 504: ServiceOutage
//   - any other non-2xx, or a 2xx carrying an error payload: ServiceError, or
//     UserInteractionRequired for the interaction error codes
func (c *Client) Exchange(ctx context.Context, tokenEndpoint string, req oauthmodel.TokenRequest) (*oauth2.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return nil, oauthmodel.WrapError(oauthmodel.CodeInvalidRequest, "invalid token endpoint", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if req.CorrelationID != "" {
		httpReq.Header.Set(oauth2.HeaderCorrelationID, req.CorrelationID)
		httpReq.Header.Set(oauth2.HeaderReturnCorrelationID, "true")
	}

	logger := c.logger.With().
		Str("correlation_id", req.CorrelationID).
		Str("grant_type", string(req.GrantType)).
		Str("token_endpoint", tokenEndpoint).
		Logger()

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Warn().Err(err).Msg("token endpoint unreachable")
		return nil, oauthmodel.WrapError(oauthmodel.CodeNetworkUnavailable, "token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, oauthmodel.WrapError(oauthmodel.CodeNetworkUnavailable, "reading token response", err)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Str("server_correlation_id", resp.Header.Get(oauth2.HeaderCorrelationID)).
		Msg("token endpoint responded")

	if IsOutageStatus(resp.StatusCode) {
		outage := &oauthmodel.Error{
			Code:       oauthmodel.CodeServiceOutage,
			Message:    "token endpoint temporarily unavailable",
			StatusCode: resp.StatusCode,
		}
		if tr, perr := oauth2.ParseTokenResponse(body); perr == nil && tr.HasError() {
			outage.ServiceCode, outage.Description = tr.Error, tr.ErrorDescription
		}
		return nil, outage
	}

	tr, perr := oauth2.ParseTokenResponse(body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if perr != nil || !tr.HasError() {
			return nil, &oauthmodel.Error{
				Code:       oauthmodel.CodeServiceError,
				Message:    "unexpected token endpoint status " + resp.Status,
				StatusCode: resp.StatusCode,
			}
		}
		return nil, oauthmodel.NewServiceError(resp.StatusCode, tr.Error, tr.ErrorDescription)
	}
	if perr != nil {
		return nil, &oauthmodel.Error{
			Code:       oauthmodel.CodeServiceError,
			Message:    "unreadable token response",
			StatusCode: resp.StatusCode,
			Err:        errors.Wrap(perr, "[Client.Exchange]"),
		}
	}
	if tr.HasError() {
		return nil, oauthmodel.NewServiceError(resp.StatusCode, tr.Error, tr.ErrorDescription)
	}
	return tr, nil
}

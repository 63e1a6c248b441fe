package authority

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// Type is the kind of authority a token is requested from.
type Type string

const (
	// AAD is a multi-tenant directory: https://host/<tenant>/
	AAD Type = "AAD"
	// ADFS is an on-premises federation server: https://host/adfs/
	ADFS Type = "ADFS"
)

const adfsSegment = "adfs"

// tenantless tenants are placeholders the service resolves to the signed-in user's directory.
var tenantless = map[string]bool{
	"common":        true,
	"organizations": true,
	"consumers":     true,
}

// Authority is the canonical form of the token issuer.
type Authority struct {
	// URI is https://host/tenant/ with a lower-case host and a single trailing slash.
	URI    string
	Host   string
	Tenant string
	Type   Type
}

// New canonicalizes raw into an Authority. Only the first path segment is kept, so an
// endpoint URL such as https://host/tenant/oauth2/authorize yields https://host/tenant/.
func New(raw string) (*Authority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "authority is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, oauthmodel.WrapError(oauthmodel.CodeInvalidRequest, "malformed authority", err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "authority must use https: "+raw)
	}
	if u.Host == "" {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "authority has no host: "+raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "authority must not carry a query or fragment: "+raw)
	}

	tenant := firstSegment(u.Path)
	if tenant == "" {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "authority has no tenant segment: "+raw)
	}
	return build(u.Host, tenant), nil
}

func build(host, tenant string) *Authority {
	host = strings.ToLower(host)
	a := &Authority{
		Host:   host,
		Tenant: tenant,
		Type:   AAD,
	}
	if strings.EqualFold(tenant, adfsSegment) {
		a.Tenant = adfsSegment
		a.Type = ADFS
	}
	a.URI = "https://" + a.Host + "/" + a.Tenant + "/"
	return a
}

func firstSegment(path string) string {
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			return s
		}
	}
	return ""
}

func (a *Authority) String() string {
	return a.URI
}

// IsTenantless reports whether the tenant segment is a placeholder such as "common".
func (a *Authority) IsTenantless() bool {
	return a.Type == AAD && tenantless[strings.ToLower(a.Tenant)]
}

func (a *Authority) Equal(other *Authority) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.URI == other.URI
}

// UpdateFromCloudInstance rewrites the host and keeps the tenant. It reports whether anything
// changed; applying the same host again is a no-op.
func (a *Authority) UpdateFromCloudInstance(host string) (bool, error) {
	host = strings.TrimSpace(host)
	if host == "" || strings.EqualFold(host, a.Host) {
		return false, nil
	}
	if strings.ContainsAny(host, "/?#") {
		return false, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "invalid cloud instance host: "+host)
	}
	*a = *build(host, a.Tenant)
	return true, nil
}

// Update replaces the authority with uri, which is canonicalized first. It reports whether
// anything changed.
func (a *Authority) Update(uri string) (bool, error) {
	next, err := New(uri)
	if err != nil {
		return false, err
	}
	if next.URI == a.URI {
		return false, nil
	}
	*a = *next
	return true, nil
}

// UpdateTenantID replaces a tenantless placeholder with the tenant the token was issued by.
func (a *Authority) UpdateTenantID(tenantID string) bool {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" || !a.IsTenantless() {
		return false
	}
	*a = *build(a.Host, tenantID)
	return true
}

// Validate fails with InvalidAuthorityType when the authority's type is not in allowed.
func (a *Authority) Validate(allowed ...Type) error {
	for _, t := range allowed {
		if a.Type == t {
			return nil
		}
	}
	return oauthmodel.NewError(oauthmodel.CodeInvalidAuthorityType,
		"authority type "+string(a.Type)+" is not supported by this flow: "+a.URI)
}

func (a *Authority) AuthorizeEndpoint() string {
	return a.URI + "oauth2/authorize"
}

func (a *Authority) TokenEndpoint() string {
	return a.URI + "oauth2/token"
}

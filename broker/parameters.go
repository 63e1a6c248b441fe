package broker

import "sort"

// Parameter keys understood by the platform broker. The key set is versioned with the broker
// protocol; brokers ignore keys they do not know.
const (
	KeyAuthority        = "authority"
	KeyResource         = "resource"
	KeyClientID         = "client_id"
	KeyCorrelationID    = "correlation_id"
	KeyClientVersion    = "client_version"
	KeyRedirectURI      = "redirect_uri"
	KeyExtraQP          = "extra_qp"
	KeyClaims           = "claims"
	KeyUsername         = "username"
	KeyUsernameType     = "username_type"
	KeyForce            = "force"
	KeyBrokerInstallURL = "broker_install_url"
)

// Parameters is an immutable name to value map handed to the broker. A new value is only ever
// produced by With.
type Parameters struct {
	values map[string]string
}

// NewParameters copies values into a new set.
func NewParameters(values map[string]string) Parameters {
	p := Parameters{values: make(map[string]string, len(values))}
	for k, v := range values {
		p.values[k] = v
	}
	return p
}

// With returns a copy of p with key set to value. p is unchanged.
func (p Parameters) With(key, value string) Parameters {
	next := Parameters{values: make(map[string]string, len(p.values)+1)}
	for k, v := range p.values {
		next.values[k] = v
	}
	next.values[key] = value
	return next
}

// Get returns the value for key and whether it is set.
func (p Parameters) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value for key, or "".
func (p Parameters) Value(key string) string {
	return p.values[key]
}

// Map returns a copy of the underlying values.
func (p Parameters) Map() map[string]string {
	m := make(map[string]string, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// Keys returns the set keys in sorted order.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Parameters) Len() int {
	return len(p.values)
}

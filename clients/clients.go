package clients

import "strings"

type ClientType string

const (
	ClientTypeConfidential ClientType = "confidential" // Holds a secret (daemons, web apps)
	ClientTypePublic       ClientType = "public"       // Cannot keep secrets (CLIs, desktop and mobile apps)
)

// Credential identifies the application acquiring tokens.
type Credential struct {
	ID     string `json:"id"`
	Secret string `json:"-"` // never serialize
}

func NewPublic(id string) Credential {
	return Credential{ID: id}
}

func NewConfidential(id, secret string) Credential {
	return Credential{ID: id, Secret: secret}
}

// Type derives the client type from the presence of a secret.
func (c Credential) Type() ClientType {
	if c.Secret == "" {
		return ClientTypePublic
	}
	return ClientTypeConfidential
}

// IsPublic returns true if the client is a public client
func (c Credential) IsPublic() bool {
	return c.Type() == ClientTypePublic
}

func (c Credential) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingClientID
	}
	return nil
}

package fetch

import (
	"encoding/base64"
	"maps"
	"strings"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone adds no header.
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthBasic sends "Authorization: Basic <base64(user:pass)>".
	AuthBasic
	// AuthAPIKey sends the key in a named header.
	AuthAPIKey
)

// AuthConfig describes credentials that are sent as a request header.
type AuthConfig struct {
	Type     AuthType
	Token    string
	Username string
	Password string
	Key      string
	// Name is the API key header name. Defaults to "X-API-Key".
	Name string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: "X-API-Key"}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: headerName}
}

// header returns the header name and value a, or ok=false for AuthNone.
func (a *AuthConfig) header() (name, value string, ok bool) {
	if a == nil {
		return "", "", false
	}
	switch a.Type {
	case AuthBearer:
		return "Authorization", "Bearer " + a.Token, true
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Authorization", "Basic " + cred, true
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		return name, a.Key, true
	default:
		return "", "", false
	}
}

// WithAuth returns a copy of ri whose headers carry the credentials of a.
// An existing header of the same name, in any case, is replaced. ri is not modified.
func (ri RequestInit) WithAuth(a *AuthConfig) RequestInit {
	name, value, ok := a.header()
	if !ok {
		return ri
	}
	headers := make(map[string]string, len(ri.Headers)+1)
	maps.Copy(headers, ri.Headers)
	maps.DeleteFunc(headers, func(k, _ string) bool { return strings.EqualFold(k, name) })
	headers[name] = value
	ri.Headers = headers
	return ri
}

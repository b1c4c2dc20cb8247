package fetch

import "testing"

func TestRequestInit_WithAuth(t *testing.T) {
	tests := []struct {
		name      string
		auth      *AuthConfig
		header    string
		wantValue string
	}{
		{"bearer", BearerAuth("tok"), "Authorization", "Bearer tok"},
		{"basic", BasicAuth("user", "pass"), "Authorization", "Basic dXNlcjpwYXNz"},
		{"api key", APIKeyAuth("k1"), "X-API-Key", "k1"},
		{"api key custom header", APIKeyAuthHeader("k2", "X-Token"), "X-Token", "k2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := RequestInit{Headers: map[string]string{"Accept": "text/plain"}}
			got := base.WithAuth(tt.auth)

			if got.Headers[tt.header] != tt.wantValue {
				t.Errorf("expected %s=%q, got %q", tt.header, tt.wantValue, got.Headers[tt.header])
			}
			if got.Headers["Accept"] != "text/plain" {
				t.Error("existing headers should be kept")
			}
			if _, ok := base.Headers[tt.header]; ok {
				t.Error("WithAuth must not modify the receiver")
			}
		})
	}
}

func TestRequestInit_WithAuthReplacesAnyCase(t *testing.T) {
	base := RequestInit{Headers: map[string]string{"authorization": "Bearer stale"}}
	got := base.WithAuth(BearerAuth("fresh"))
	if len(got.Headers) != 1 || got.Headers["Authorization"] != "Bearer fresh" {
		t.Errorf("expected a single replaced header, got %v", got.Headers)
	}
	if base.Headers["authorization"] != "Bearer stale" {
		t.Error("WithAuth must not modify the receiver")
	}
}

func TestRequestInit_WithAuthNone(t *testing.T) {
	base := RequestInit{}
	if got := base.WithAuth(nil); got.Headers != nil {
		t.Errorf("nil auth should add nothing, got %v", got.Headers)
	}
	if got := base.WithAuth(&AuthConfig{Type: AuthNone}); got.Headers != nil {
		t.Errorf("AuthNone should add nothing, got %v", got.Headers)
	}
}

func TestAuth_ForwardedToTransport(t *testing.T) {
	f := &recordingXHR{}
	New("/api", RequestInit{}.WithAuth(BearerAuth("abc")), withFake(f))

	if len(f.headers) != 1 || f.headers[0] != [2]string{"Authorization", "Bearer abc"} {
		t.Errorf("unexpected headers %v", f.headers)
	}
}

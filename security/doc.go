// Package security builds the client TLS configuration shared by the
// net/http and fasthttp transport backends.
//
//	cfg := security.TLSConfig{CAFile: "ca.pem", CertFile: "client.pem", KeyFile: "client-key.pem"}
//	tlsCfg, err := cfg.Build()
//	x := xhr.New(xhr.WithTLSConfig(tlsCfg))
//
// A zero TLSConfig builds to nil, which leaves the backends on the system
// defaults.
package security

package httpc

import (
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/modelfetch/internal/constants"
	"github.com/loykin/modelfetch/internal/util"
)

// Config describes how the outbound client is built.
type Config struct {
	Insecure      bool
	MinTLSVersion string
	MaxTLSVersion string
	// Timeout bounds the whole request; zero leaves it unbounded.
	Timeout   time.Duration
	UserAgent string
}

// ParseTLSVersion converts "1.2", "tls12", "TLS1.3" and similar spellings to a
// crypto/tls constant. Unknown input yields 0.
func ParseTLSVersion(version string) uint16 {
	switch util.TrimAndLower(version) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// TLSConfig returns the TLS settings implied by c, or nil when resty's
// defaults should be left alone.
func (c Config) TLSConfig() *tls.Config {
	minV, maxV := ParseTLSVersion(c.MinTLSVersion), ParseTLSVersion(c.MaxTLSVersion)
	if !c.Insecure && minV == 0 && maxV == 0 {
		return nil
	}
	// #nosec G402 -- insecure mode is an explicit opt-in for test endpoints
	return &tls.Config{
		InsecureSkipVerify: c.Insecure,
		MinVersion:         minV,
		MaxVersion:         maxV,
	}
}

// New returns a resty.Client configured from c. No retries are configured.
func New(c Config) *resty.Client {
	client := resty.New().
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", util.TrimWithDefault(c.UserAgent, constants.DefaultUserAgent))
	if c.Timeout > 0 {
		client.SetTimeout(c.Timeout)
	}
	if cfg := c.TLSConfig(); cfg != nil {
		client.SetTLSClientConfig(cfg)
	}
	return client
}

package fetch

import (
	"fmt"
	"net/url"
	"path"

	"github.com/loykin/modelfetch/internal/constants"
	"github.com/loykin/modelfetch/internal/util"
)

// Endpoint describes the listing request. Empty fields take the
// Generative Language API defaults.
type Endpoint struct {
	BaseURL  string
	Version  string
	Resource string
	// KeyParam is the query parameter carrying the key, "key" by default.
	KeyParam string
	Key      string
}

// URL returns <base>/<version>/<resource>?<param>=<key>.
func (e Endpoint) URL() (string, error) {
	key, ok := util.TrimEmptyCheck(e.Key)
	if !ok {
		return "", ErrMissingKey
	}

	raw := util.TrimWithDefault(e.BaseURL, constants.DefaultBaseURL)
	base, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q: want http(s)://host", raw)
	}

	base.Path = path.Join("/", base.Path,
		util.TrimWithDefault(e.Version, constants.DefaultAPIVersion),
		util.TrimWithDefault(e.Resource, constants.DefaultResource))
	q := base.Query()
	q.Set(util.TrimWithDefault(e.KeyParam, constants.DefaultKeyParam), key)
	base.RawQuery = q.Encode()
	base.Fragment = ""
	return base.String(), nil
}

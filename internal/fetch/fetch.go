package fetch

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/modelfetch/internal/common"
	"github.com/tidwall/gjson"
)

// Payload is a response body that has been checked to be UTF-8 JSON.
// The bytes are kept as received so member order and number text survive.
type Payload struct {
	Body       []byte
	StatusCode int
}

// Items returns the number of entries under "models", or 0 if absent.
func (p Payload) Items() int {
	res := gjson.GetBytes(p.Body, "models")
	if !res.IsArray() {
		return 0
	}
	return len(res.Array())
}

// NextPageToken returns the upstream pagination token, if any. It is only
// reported; further pages are never requested.
func (p Payload) NextPageToken() string {
	return gjson.GetBytes(p.Body, "nextPageToken").String()
}

// Fetcher performs the single GET.
type Fetcher struct {
	client *resty.Client
	logger *common.Logger
}

// NewFetcher wraps client. A nil client is replaced by a default resty client.
func NewFetcher(client *resty.Client) *Fetcher {
	if client == nil {
		client = resty.New()
	}
	return &Fetcher{client: client, logger: common.GetLogger().WithComponent("fetch")}
}

// Fetch requests ep and validates the body. Any non-2xx status, a body that
// is not UTF-8, or a body that is not JSON is an OperationError.
func (f *Fetcher) Fetch(ctx context.Context, ep Endpoint) (Payload, error) {
	u, err := ep.URL()
	if err != nil {
		return Payload{}, fail(StageRequest, err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := f.logger.WithRequest(http.MethodGet, u)
	log.Debug("sending request")

	resp, err := f.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return Payload{}, fail(StageFetch, err)
	}
	body := resp.Body()
	log.Info("response received", "status", resp.StatusCode(), "bytes", len(body), "elapsed", resp.Time())

	if !resp.IsSuccess() {
		if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
			return Payload{StatusCode: resp.StatusCode()}, failf(StageFetch, "HTTP Error %d: %s: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()), msg)
		}
		return Payload{StatusCode: resp.StatusCode()}, failf(StageFetch, "HTTP Error %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))
	}
	if !utf8.Valid(body) {
		return Payload{StatusCode: resp.StatusCode()}, fail(StageDecode, errors.New("response body is not valid UTF-8"))
	}
	if !gjson.ValidBytes(body) {
		return Payload{StatusCode: resp.StatusCode()}, fail(StageParse, errors.New("response body is not valid JSON"))
	}

	p := Payload{Body: body, StatusCode: resp.StatusCode()}
	if tok := p.NextPageToken(); tok != "" {
		log.Warn("response has more pages; only the first page is saved", "next_page_token", tok)
	}
	return p, nil
}

// Package notion reads tasks and their related projects and sprints from Notion and
// writes back calendar event ids and review pages.
package notion

import (
	"net/http"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

// pageSize is the largest page the Notion query endpoint returns.
const pageSize = 100

// rateLimitedTransport spaces out requests so long paginated reads stay under
// Notion's average request budget.
type rateLimitedTransport struct {
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewClient builds a notionapi client limited to rps requests per second. A non-positive
// rps disables limiting. base may be nil to use http.DefaultTransport.
func NewClient(token string, rps float64, base http.RoundTripper) *notionapi.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	transport := base
	if rps > 0 {
		transport = &rateLimitedTransport{
			limiter: rate.NewLimiter(rate.Limit(rps), 1),
			base:    base,
		}
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}
	return notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(httpClient))
}

// Package probe performs live HTTP reachability checks against a deployed
// instance of the target application. Any transport failure is read as "not
// reachable": the policy prefers missed detections over false alarms, so
// errors never cross the detector boundary as findings.
package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const maxBodyBytes = 256 * 1024

// Response is the collaborator contract detectors consume.
type Response struct {
	Status int
	Body   string
	Header http.Header
}

// Fetcher retrieves one URL. A nil response with an error means the target
// could not be proven reachable; callers produce no finding in that case.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Client is the default Fetcher: short connect/read timeouts, a redirect
// cap, and a rate limit so probing never hammers a live host.
type Client struct {
	hc      *http.Client
	limiter *rate.Limiter
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		hc: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: timeout / 2}).DialContext,
				TLSHandshakeTimeout:   timeout / 2,
				ResponseHeaderTimeout: timeout,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
}

func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "larascan-probe")
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &Response{Status: resp.StatusCode, Body: string(body), Header: resp.Header.Clone()}, nil
}

// Package publicip finds the caller's public IP address by asking an
// external "what is my IP" endpoint.
package publicip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/miekg/dns"
	"github.com/rs/zerolog/log"
)

var (
	ErrNetwork             = errors.New("no internet connection")
	ErrUnsupportedEndpoint = errors.New("unsupported ip server endpoint")
)

// Resolver supports http(s):// endpoints answering with the address as
// plain text and dns://server[:port]/name endpoints answering with an A,
// AAAA or TXT record.
type Resolver struct {
	HTTPClient *http.Client
	DNSClient  *dns.Client
}

func New() *Resolver {
	return &Resolver{
		HTTPClient: &http.Client{},
		DNSClient:  new(dns.Client),
	}
}

// Resolve performs a single request against endpoint. The answer is
// returned trimmed but otherwise unvalidated.
func (r *Resolver) Resolve(ctx context.Context, endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedEndpoint, err)
	}

	var ip string
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		ip, err = r.resolveHTTP(ctx, u)
	case "dns":
		ip, err = r.resolveDNS(ctx, u)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEndpoint, endpoint)
	}
	if err != nil {
		return "", err
	}

	log.Debug().Str("endpoint", u.Redacted()).Str("ip", ip).Msg("public ip resolved")
	return ip, nil
}

func (r *Resolver) resolveHTTP(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedEndpoint, err)
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if resp == nil || resp.Body == nil {
		return "", fmt.Errorf("%w: empty response from %s", ErrNetwork, u.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s answered %s", ErrNetwork, u.Host, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}
	return strings.TrimSpace(string(body)), nil
}

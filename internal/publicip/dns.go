package publicip

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/miekg/dns"
)

// resolveDNS queries u.Host for the record named by u.Path. The record type
// defaults to A and can be changed with ?type=TXT (or AAAA).
func (r *Resolver) resolveDNS(ctx context.Context, u *url.URL) (string, error) {
	server := u.Host
	if server == "" {
		return "", fmt.Errorf("%w: dns endpoint without server", ErrUnsupportedEndpoint)
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(strings.Trim(server, "[]"), "53")
	}

	name := strings.Trim(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("%w: dns endpoint without record name", ErrUnsupportedEndpoint)
	}

	qtype := dns.TypeA
	if t := u.Query().Get("type"); t != "" {
		var ok bool
		qtype, ok = dns.StringToType[strings.ToUpper(t)]
		if !ok {
			return "", fmt.Errorf("%w: unknown record type %q", ErrUnsupportedEndpoint, t)
		}
	}

	client := r.DNSClient
	if client == nil {
		client = new(dns.Client)
	}

	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), qtype)
	resp, _, err := client.ExchangeContext(ctx, req, server)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: empty response from %s", ErrNetwork, server)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("%w: %s answered %s", ErrNetwork, server, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		switch rec := rr.(type) {
		case *dns.A:
			return rec.A.String(), nil
		case *dns.AAAA:
			return rec.AAAA.String(), nil
		case *dns.TXT:
			return strings.TrimSpace(strings.Join(rec.Txt, "")), nil
		}
	}
	return "", fmt.Errorf("%w: no usable answer for %s from %s", ErrNetwork, name, server)
}

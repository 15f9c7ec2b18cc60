package dynipupdaterAPI

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"dynipupdater/api/types"
)

// ErrUnreachable means nothing accepted a connection on the API address, so
// the request never reached a running instance.
var ErrUnreachable = errors.New("api unreachable")

type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(address string, port uint16) Client {
	return Client{
		client:  &http.Client{},
		baseURL: "http://" + net.JoinHostPort(address, strconv.Itoa(int(port))) + "/api/v1",
	}
}

func (c Client) Status(ctx context.Context) (types.StatusRes, error) {
	var res types.StatusRes
	err := c.do(ctx, http.MethodGet, "/status", &res)
	return res, err
}

// Close asks the running instance to revoke its rules and exit.
func (c Client) Close(ctx context.Context) (types.CloseRes, error) {
	var res types.CloseRes
	err := c.do(ctx, http.MethodPost, "/close", &res)
	return res, err
}

func (c Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isDialError(err) {
			return fmt.Errorf("%w: %w", ErrUnreachable, err)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr types.ErrorRes
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			return fmt.Errorf("request failed: %s", resp.Status)
		}
		return fmt.Errorf("request failed: %s", apiErr.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response failed: %w", err)
	}
	return nil
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

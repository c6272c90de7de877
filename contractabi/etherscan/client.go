// Package etherscan fetches verified contract ABIs from Etherscan-compatible block explorer APIs.
package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// UnverifiedSentinel is the result text returned for contracts without verified source.
const UnverifiedSentinel = "Contract source code not verified"

// DefaultEndpoints maps network names to explorer API URLs.
var DefaultEndpoints = map[string]string{
	"mainnet":  "https://api.etherscan.io/api",
	"ethereum": "https://api.etherscan.io/api",
	"sepolia":  "https://api-sepolia.etherscan.io/api",
	"goerli":   "https://api-goerli.etherscan.io/api",
	"polygon":  "https://api.polygonscan.com/api",
	"arbitrum": "https://api.arbiscan.io/api",
	"optimism": "https://api-optimistic.etherscan.io/api",
}

// Response is the envelope returned by every explorer API call. Result is either the payload or an error string.
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Client performs ABI lookups. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoints  map[string]string
}

// NewClient creates a Client. overrides adds or replaces entries of DefaultEndpoints. A nil httpClient uses a
// client with a 30 second timeout.
func NewClient(apiKey string, overrides map[string]string, httpClient *http.Client) *Client {
	endpoints := make(map[string]string, len(DefaultEndpoints)+len(overrides))
	for name, endpoint := range DefaultEndpoints {
		endpoints[name] = endpoint
	}
	for name, endpoint := range overrides {
		if strings.TrimSpace(endpoint) != "" {
			endpoints[name] = endpoint
		}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{httpClient: httpClient, apiKey: apiKey, endpoints: endpoints}
}

// Endpoint returns the API URL used for network.
func (c *Client) Endpoint(network string) (string, bool) {
	endpoint, ok := c.endpoints[network]
	return endpoint, ok
}

// FetchABI returns the raw JSON ABI of a verified contract. It fails with failures.ErrUnsupportedNetwork when no
// endpoint is known for network, failures.ErrSourceNotVerified for unverified contracts, and a
// *failures.RemoteServiceError otherwise.
func (c *Client) FetchABI(ctx context.Context, network string, address common.Address) ([]byte, error) {
	endpoint, ok := c.Endpoint(network)
	if !ok {
		return nil, failures.ErrUnsupportedNetwork
	}
	addressHex := strings.ToLower(address.Hex())

	requestURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ABI lookup endpoint for %s", network)
	}
	query := requestURL.Query()
	query.Set("module", "contract")
	query.Set("action", "getabi")
	query.Set("address", addressHex)
	query.Set("format", "json")
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}
	requestURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err, addressHex)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err, addressHex)
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, failures.NewRemoteServiceError(failures.RemoteNotFound, statusErr, addressHex)
		case http.StatusTooManyRequests:
			return nil, failures.NewRemoteServiceError(failures.RemoteRateLimited, statusErr, addressHex)
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, failures.NewRemoteServiceError(failures.RemoteAuthFailure, statusErr, addressHex)
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return nil, failures.NewRemoteServiceError(failures.RemoteTimeout, statusErr, addressHex)
		default:
			return nil, failures.TranslateRemoteServiceError(statusErr, addressHex)
		}
	}

	var envelope Response
	if err = json.Unmarshal(body, &envelope); err != nil {
		return nil, failures.TranslateRemoteServiceError(errors.Wrap(err, "malformed response"), addressHex)
	}

	var result string
	if err = json.Unmarshal(envelope.Result, &result); err != nil {
		return nil, failures.TranslateRemoteServiceError(errors.Wrap(err, "response result is not a string"), addressHex)
	}
	if envelope.Status != "1" {
		if strings.Contains(result, UnverifiedSentinel) {
			return nil, failures.ErrSourceNotVerified
		}
		return nil, failures.TranslateRemoteServiceError(fmt.Errorf("%s: %s", envelope.Message, result), addressHex)
	}
	return []byte(result), nil
}

// transportError classifies a failure to reach the explorer. The error text embeds the request URL, so it is not
// matched against the text rules.
func transportError(err error, address string) *failures.RemoteServiceError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failures.NewRemoteServiceError(failures.RemoteTimeout, err, address)
	}
	return failures.NewRemoteServiceError(failures.RemoteConnectivity, err, address)
}

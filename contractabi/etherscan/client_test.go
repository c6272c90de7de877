package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erc20Abi = `[{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

var target = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")

// newServer starts an explorer fake that replies with the given status code and body, recording the last query.
func newServer(t *testing.T, status int, body string, lastQuery *map[string]string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastQuery != nil {
			q := map[string]string{}
			for k := range r.URL.Query() {
				q[k] = r.URL.Query().Get(k)
			}
			*lastQuery = q
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// TestFetchABISuccess verifies the query parameters sent and that the ABI string is unwrapped from the envelope.
func TestFetchABISuccess(t *testing.T) {
	var query map[string]string
	body := fmt.Sprintf(`{"status":"1","message":"OK","result":%q}`, erc20Abi)
	server := newServer(t, http.StatusOK, body, &query)

	client := NewClient("secret", map[string]string{"testnet": server.URL + "/api"}, server.Client())
	abiJSON, err := client.FetchABI(context.Background(), "testnet", target)
	require.NoError(t, err)
	assert.JSONEq(t, erc20Abi, string(abiJSON))

	assert.Equal(t, "contract", query["module"])
	assert.Equal(t, "getabi", query["action"])
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", query["address"])
	assert.Equal(t, "json", query["format"])
	assert.Equal(t, "secret", query["apikey"])
}

// TestFetchABIWithoutKey verifies no apikey parameter is sent when no key is configured.
func TestFetchABIWithoutKey(t *testing.T) {
	var query map[string]string
	body := fmt.Sprintf(`{"status":"1","message":"OK","result":%q}`, erc20Abi)
	server := newServer(t, http.StatusOK, body, &query)

	client := NewClient("", map[string]string{"testnet": server.URL}, server.Client())
	_, err := client.FetchABI(context.Background(), "testnet", target)
	require.NoError(t, err)
	_, hasKey := query["apikey"]
	assert.False(t, hasKey)
}

// TestFetchABIUnverified verifies the unverified sentinel is distinguished from other failures.
func TestFetchABIUnverified(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"status":"0","message":"NOTOK","result":"Contract source code not verified"}`, nil)
	client := NewClient("", map[string]string{"testnet": server.URL}, server.Client())

	_, err := client.FetchABI(context.Background(), "testnet", target)
	assert.ErrorIs(t, err, failures.ErrSourceNotVerified)
}

// TestFetchABIServiceErrors verifies explorer-level and HTTP-level failures are categorized.
func TestFetchABIServiceErrors(t *testing.T) {
	cases := []struct {
		status   int
		body     string
		category failures.RemoteCategory
	}{
		{http.StatusOK, `{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`, failures.RemoteRateLimited},
		{http.StatusOK, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`, failures.RemoteAuthFailure},
		{http.StatusTooManyRequests, `slow down`, failures.RemoteRateLimited},
		{http.StatusForbidden, `denied`, failures.RemoteAuthFailure},
		{http.StatusNotFound, `missing`, failures.RemoteNotFound},
		{http.StatusOK, `<html>`, failures.RemoteUnclassified},
	}
	for _, c := range cases {
		server := newServer(t, c.status, c.body, nil)
		client := NewClient("", map[string]string{"testnet": server.URL}, server.Client())

		_, err := client.FetchABI(context.Background(), "testnet", target)
		var remoteErr *failures.RemoteServiceError
		require.True(t, errors.As(err, &remoteErr), c.body)
		assert.Equal(t, c.category, remoteErr.Category, c.body)
	}
}

// TestFetchABIUnsupportedNetwork verifies networks without an endpoint fail immediately.
func TestFetchABIUnsupportedNetwork(t *testing.T) {
	client := NewClient("", nil, nil)
	_, err := client.FetchABI(context.Background(), "localnet", target)
	assert.ErrorIs(t, err, failures.ErrUnsupportedNetwork)

	endpoint, ok := client.Endpoint("ethereum")
	assert.True(t, ok)
	assert.Equal(t, "https://api.etherscan.io/api", endpoint)
}

// TestFetchABIConnectivity verifies transport failures are categorized as connectivity problems.
func TestFetchABIConnectivity(t *testing.T) {
	server := newServer(t, http.StatusOK, "", nil)
	endpoint := server.URL
	server.Close()

	client := NewClient("", map[string]string{"testnet": endpoint}, nil)
	_, err := client.FetchABI(context.Background(), "testnet", target)
	var remoteErr *failures.RemoteServiceError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, failures.RemoteConnectivity, remoteErr.Category)
}

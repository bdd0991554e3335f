package firewire

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// defaultEndpoint is the public Firestore REST
// endpoint.
const defaultEndpoint = "https://firestore.googleapis.com/v1/"

const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPConnectTimeout = 5 * time.Second
const defaultHTTPTLSTimeout = 5 * time.Second

// A Transport issues one JSON request against the
// document store and returns the raw response body.
//
// It is the sole suspension point of the write
// pipeline - all planning before it is pure
// computation. Retry, timeout and cancellation policy
// belong to Transport implementations, never to the
// planning core.
type Transport interface {
	Request(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error)
}

// jsonTransport is the default Transport: a plain
// HTTP client against the REST endpoint, with bearer
// tokens drawn from an oauth2 token source.
type jsonTransport struct {
	endpoint string
	hc       *http.Client
	tokens   oauth2.TokenSource
}

func newJSONTransport(endpoint string, hc *http.Client, tokens oauth2.TokenSource) *jsonTransport {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	if hc == nil {
		hc = defaultHTTPClient()
	}

	return &jsonTransport{endpoint: endpoint, hc: hc, tokens: tokens}
}

func defaultHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultHTTPConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHTTPTLSTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   defaultHTTPTimeout,
	}
}

// Request issues one JSON request. Non-2xx responses
// are surfaced unchanged as *googleapi.Error.
func (t *jsonTransport) Request(
	ctx context.Context,
	method string,
	path string,
	body interface{},
) (json.RawMessage, error) {
	var reqBody io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.endpoint+path, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if t.tokens != nil {
		token, err := t.tokens.Token()
		if err != nil {
			glog.Infof("[fw]token error = %s\n", err)
			return nil, err
		}

		token.SetAuthHeader(req)
	}

	glog.V(2).Infof("[fw]%s %s\n", method, path)

	resp, err := t.hc.Do(req)
	if err != nil {
		glog.Infof("[fw]%s %s error = %s\n", method, path, err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		glog.Infof("[fw]%s %s status error = %s\n", method, path, err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(data), nil
}

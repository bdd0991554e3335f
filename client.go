package firewire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// DefaultDatabase is the database ID used when none
// is configured.
const DefaultDatabase = "(default)"

// A Client provides access to a Firestore database
// over its REST protocol.
//
// It is designed to be thread-safe and used as a
// singleton instance: all planning is pure
// computation, and the underlying HTTP client pools
// its connections.
type Client struct {
	projectID  string
	databaseID string
	// root is the database's qualified document root,
	// "projects/<p>/databases/<d>/documents".
	root      string
	transport Transport
}

// Settings configure a Connection. Like Options,
// Settings values are immutable - each method creates
// a new instance.
type Settings struct {
	databaseID string
	endpoint   string
	creds      *Credentials
	tokens     oauth2.TokenSource
	httpClient *http.Client
	transport  Transport
}

// Create a new Settings instance.
func NewSettings() Settings {
	return Settings{}
}

// Use a database other than "(default)".
func (s Settings) WithDatabase(databaseID string) Settings {
	s.databaseID = databaseID
	return s
}

// Use a custom API endpoint, e.g. a local emulator.
// The default is the public Firestore REST endpoint.
func (s Settings) WithEndpoint(endpoint string) Settings {
	s.endpoint = endpoint
	return s
}

// Authenticate with the given service account
// credentials. A self-signed JWT is minted and
// refreshed as needed.
func (s Settings) WithCredentials(creds *Credentials) Settings {
	s.creds = creds
	return s
}

// Authenticate with an externally managed token
// source, taking precedence over WithCredentials.
func (s Settings) WithTokenSource(tokens oauth2.TokenSource) Settings {
	s.tokens = tokens
	return s
}

// Use a custom HTTP client for the default transport.
func (s Settings) WithHTTPClient(hc *http.Client) Settings {
	s.httpClient = hc
	return s
}

// Use a custom Transport, taking precedence over all
// endpoint, credential and HTTP client settings.
func (s Settings) WithTransport(t Transport) Settings {
	s.transport = t
	return s
}

// Create a new Client instance.
//
// A Client provides access to a Firestore database
// over its REST protocol.
//
// It is designed to be thread-safe and used as a
// singleton instance.
//
// Without credentials or a token source, requests are
// sent unauthenticated, which is only useful against
// an emulator endpoint.
func Connect(ctx context.Context, projectID string, settings ...Settings) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("firewire: empty project ID")
	}

	var s Settings
	if len(settings) > 0 {
		s = settings[0]
	}

	databaseID := s.databaseID
	if databaseID == "" {
		databaseID = DefaultDatabase
	}

	transport := s.transport
	if transport == nil {
		tokens := s.tokens

		if tokens == nil && s.creds != nil {
			var err error

			tokens, err = newTokenSource(s.creds, "")
			if err != nil {
				return nil, err
			}
		}

		transport = newJSONTransport(s.endpoint, s.httpClient, tokens)
	}

	return &Client{
		projectID:  projectID,
		databaseID: databaseID,
		root:       fmt.Sprintf("projects/%s/databases/%s/documents", projectID, databaseID),
		transport:  transport,
	}, nil
}

// Close releases the resources held by the Client.
//
// Should be invoked when the client is no longer
// required. Close need not be called at program exit.
func (c *Client) Close() error {
	if c == nil || c.transport == nil {
		return errors.New("firewire: nil Client or Transport")
	}

	if t, ok := c.transport.(*jsonTransport); ok {
		t.hc.CloseIdleConnections()
	}

	return nil
}

// Doc returns a DocumentRef for the document at the
// given relative path, a sequence of IDs separated by
// slashes, e.g. "users/alice".
//
// Returns nil if path contains an odd number of IDs,
// or any ID is empty.
func (c *Client) Doc(path string) *DocumentRef {
	if c == nil {
		return nil
	}

	ref, err := newDocumentRef(c, path)
	if err != nil {
		return nil
	}

	return ref
}

// Batch returns a new, empty WriteBatch.
func (c *Client) Batch() *WriteBatch {
	if c == nil {
		return nil
	}

	return &WriteBatch{c: c}
}

// GetDoc fetches a single document.
//
// A missing document is not an error: the returned
// snapshot reports Exists() == false.
func (c *Client) GetDoc(ctx context.Context, path string) (*DocumentSnapshot, error) {
	if c == nil {
		return nil, errors.New("firewire: nil Client")
	}

	ref, err := newDocumentRef(c, path)
	if err != nil {
		return nil, err
	}

	raw, err := c.transport.Request(ctx, http.MethodGet, ref.name, nil)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return newDocumentSnapshot(ref, nil)
		}

		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("firewire: malformed document response: %v", err)
	}

	return newDocumentSnapshot(ref, &doc)
}

// Create plans and commits a single create write.
func (c *Client) Create(ctx context.Context, path string, data interface{}) (*WriteResult, error) {
	return c.commitOne(ctx, path, func(b *WriteBatch, ref *DocumentRef) error {
		return b.Create(ref, data)
	})
}

// Set plans and commits a single set write.
func (c *Client) Set(ctx context.Context, path string, data interface{}, opts ...Options) (*WriteResult, error) {
	return c.commitOne(ctx, path, func(b *WriteBatch, ref *DocumentRef) error {
		return b.Set(ref, data, opts...)
	})
}

// Update plans and commits a single update write.
func (c *Client) Update(ctx context.Context, path string, data interface{}, opts ...Options) (*WriteResult, error) {
	return c.commitOne(ctx, path, func(b *WriteBatch, ref *DocumentRef) error {
		return b.Update(ref, data, opts...)
	})
}

// Delete plans and commits a single delete write.
func (c *Client) Delete(ctx context.Context, path string, opts ...Options) (*WriteResult, error) {
	return c.commitOne(ctx, path, func(b *WriteBatch, ref *DocumentRef) error {
		return b.Delete(ref, opts...)
	})
}

// commitOne runs a one-write batch.
func (c *Client) commitOne(
	ctx context.Context,
	path string,
	queue func(*WriteBatch, *DocumentRef) error,
) (*WriteResult, error) {
	if c == nil {
		return nil, errors.New("firewire: nil Client")
	}

	ref, err := newDocumentRef(c, path)
	if err != nil {
		return nil, err
	}

	batch := c.Batch()

	if err := queue(batch, ref); err != nil {
		return nil, err
	}

	results, err := batch.Commit(ctx)
	if err != nil {
		return nil, err
	}

	return results[0], nil
}

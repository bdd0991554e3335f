package firewire

import (
	"errors"
	"strings"
)

// A Firewire DocumentRef refers to a single Firestore
// document.
//
// DocumentRef instances are lightweight and safe to
// create repeatedly.
type DocumentRef struct {
	c *Client

	// Path is the document's path relative to the
	// database's document root, e.g. "users/alice".
	Path string

	// ID is the last segment of Path.
	ID string

	// name is the fully qualified resource name, i.e.
	// "projects/<p>/databases/<d>/documents/<Path>".
	name string
}

// newDocumentRef builds a reference from a relative
// document path. The path must contain an even,
// non-zero number of non-empty slash-separated IDs.
func newDocumentRef(c *Client, relPath string) (*DocumentRef, error) {
	segments := strings.Split(relPath, "/")

	if len(segments)%2 != 0 {
		return nil, errors.New("firewire: document path must have an even number of IDs - " + relPath)
	}

	for _, segment := range segments {
		if segment == "" {
			return nil, errors.New("firewire: document path contains an empty ID - " + relPath)
		}
	}

	return &DocumentRef{
		c:    c,
		Path: relPath,
		ID:   segments[len(segments)-1],
		name: c.root + "/" + relPath,
	}, nil
}

// decodeReference materialises a reference wire value
// as a DocumentRef bound to the given client, with
// the protocol path prefix stripped.
func decodeReference(c *Client, name string) (*DocumentRef, error) {
	if c == nil {
		return nil, errors.New("firewire: nil Client")
	}

	relPath, err := relativizePath(name)
	if err != nil {
		return nil, err
	}

	return newDocumentRef(c, relPath)
}

// relativizePath reduces an absolute resource path of
// the form "projects/<p>/databases/<d>/documents/<rel>"
// to "<rel>".
func relativizePath(name string) (string, error) {
	const marker = "/documents/"

	i := strings.Index(name, marker)
	if !strings.HasPrefix(name, "projects/") || i < 0 || i+len(marker) == len(name) {
		return "", errors.New("firewire: malformed document resource name - " + name)
	}

	return name[i+len(marker):], nil
}

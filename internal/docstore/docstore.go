// Package docstore exposes the reference document corpus: listing the
// indexed documents and minting time-limited signed URLs for them, the
// self-hosted equivalent of a storage-layer presigned URL.
//
// A signed URL is /docs/{path}?exp={unix}&sig={signature} where the
// signature is an HMAC-SHA256 over the path and expiry. Verification
// uses a constant-time compare and rejects expired or tampered links.
package docstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/finboard/finboard/internal/log"
)

// Sentinel errors for link verification.
var (
	// ErrLinkExpired is returned when the link's expiry is in the past.
	ErrLinkExpired = errors.New("docstore: link expired")

	// ErrLinkInvalid is returned when the signature does not match.
	ErrLinkInvalid = errors.New("docstore: link signature invalid")
)

// Querier defines the warehouse queries the store depends on.
type Querier interface {
	// ListDocuments returns the distinct relative paths of all indexed
	// documents, sorted.
	ListDocuments(ctx context.Context) ([]string, error)

	// DocumentText returns the document's chunk texts concatenated in
	// index order, reconstructing the readable body.
	DocumentText(ctx context.Context, relativePath string) (string, error)
}

// Store lists documents and signs document links.
type Store struct {
	q      Querier
	secret []byte
	ttl    time.Duration
	logger log.Logger
}

// New creates a Store. secret signs links; ttl is the link lifetime.
func New(q Querier, secret []byte, ttl time.Duration, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{q: q, secret: secret, ttl: ttl, logger: logger}
}

// List returns the relative paths of all indexed documents.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.q.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// Text returns the reconstructed text of one document.
func (s *Store) Text(ctx context.Context, relativePath string) (string, error) {
	text, err := s.q.DocumentText(ctx, relativePath)
	if err != nil {
		return "", fmt.Errorf("reading document %q: %w", relativePath, err)
	}
	return text, nil
}

// SignedURL mints a time-limited link for the given document path,
// relative to the server root.
func (s *Store) SignedURL(relativePath string, now time.Time) string {
	exp := now.Add(s.ttl).Unix()
	sig := s.sign(relativePath, exp)

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	q.Set("sig", sig)

	u := url.URL{Path: "/docs/" + relativePath, RawQuery: q.Encode()}
	return u.String()
}

// Verify checks a link's signature and expiry at the given time.
func (s *Store) Verify(relativePath string, exp int64, sig string, now time.Time) error {
	expected := s.sign(relativePath, exp)
	// Compare signatures before expiry so a forged link never learns
	// which check failed first.
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrLinkInvalid
	}
	if now.Unix() > exp {
		return ErrLinkExpired
	}
	return nil
}

// sign computes the base64url HMAC-SHA256 over the path and expiry.
func (s *Store) sign(relativePath string, exp int64) string {
	h := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(h, "%s\n%d", relativePath, exp)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

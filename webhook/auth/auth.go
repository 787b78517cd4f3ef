package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"net/http"
)

/* Inbound webhook authentication.
 * Two independent mechanisms, each optional: an exact-match shared
 * header and an HMAC over the raw request body. When both are
 * configured both must pass. When neither is configured every request
 * is accepted — validation-disabled mode exists for early integration
 * and is not a production default.
 */

// DefaultSignatureHeader is where the provider sends its digest unless
// configured otherwise.
const DefaultSignatureHeader = "X-Cucuru-Signature"

var (
	ErrHeaderMismatch    = errors.New("inbound header missing or mismatched")
	ErrMissingSignature  = errors.New("signature header missing")
	ErrSignatureMismatch = errors.New("signature does not match request body")
)

// Settings carries the configured inbound-auth material.
type Settings struct {
	HeaderName      string
	HeaderValue     string
	Secret          string
	SignatureHeader string
	Algorithm       string // sha1, sha256 (default) or sha512
}

type Verifier struct {
	headerName  string
	headerValue string
	secret      []byte
	sigHeader   string
	newHash     func() hash.Hash
}

// NewVerifier validates the settings and builds a verifier. An unknown
// HMAC algorithm or a half-configured header pair is a startup error.
func NewVerifier(s Settings) (*Verifier, error) {
	if (s.HeaderName == "") != (s.HeaderValue == "") {
		return nil, fmt.Errorf("inbound header name and value must be configured together")
	}

	var newHash func() hash.Hash
	switch s.Algorithm {
	case "", "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	case "sha1":
		newHash = sha1.New
	default:
		return nil, fmt.Errorf("unsupported HMAC algorithm: %s", s.Algorithm)
	}

	sigHeader := s.SignatureHeader
	if sigHeader == "" {
		sigHeader = DefaultSignatureHeader
	}

	v := &Verifier{
		headerName:  s.HeaderName,
		headerValue: s.HeaderValue,
		sigHeader:   sigHeader,
		newHash:     newHash,
	}
	if s.Secret != "" {
		v.secret = []byte(s.Secret)
	}
	return v, nil
}

// HeaderAuthEnabled reports whether the shared-header check is configured
func (v *Verifier) HeaderAuthEnabled() bool {
	return v.headerName != ""
}

// SignatureAuthEnabled reports whether the HMAC check is configured
func (v *Verifier) SignatureAuthEnabled() bool {
	return len(v.secret) > 0
}

/* Verify authenticates one delivery. The header check runs first and
 * short-circuits, so the HMAC is never computed for a request that
 * already failed the cheaper check. The body must be the exact raw
 * bytes received: JSON re-serialization is not byte-stable.
 */
func (v *Verifier) Verify(headers http.Header, body []byte) error {
	if v.HeaderAuthEnabled() {
		got := headers.Get(v.headerName)
		if got == "" || !constantTimeEqual(got, v.headerValue) {
			return ErrHeaderMismatch
		}
	}

	if v.SignatureAuthEnabled() {
		sig := headers.Get(v.sigHeader)
		if sig == "" {
			return ErrMissingSignature
		}
		if !v.matches(sig, body) {
			return ErrSignatureMismatch
		}
	}

	return nil
}

/* matches accepts the digest in hex or base64. The provider's encoding
 * is not pinned down, so both spellings of the same digest are valid
 * and neither is preferred.
 */
func (v *Verifier) matches(sig string, body []byte) bool {
	mac := hmac.New(v.newHash, v.secret)
	mac.Write(body)
	digest := mac.Sum(nil)

	if constantTimeEqual(sig, hex.EncodeToString(digest)) {
		return true
	}
	return constantTimeEqual(sig, base64.StdEncoding.EncodeToString(digest))
}

// constantTimeEqual compares in constant time and fails closed on a
// length mismatch.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Package encoding provides the two leaf codecs the rest of this module
// builds on: base64url-nopad octet encoding and an order-preserving
// canonical JSON encoder for values that are already order-stable.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
)

// b64Encoding is base64url without padding, matching data_encoding's
// BASE64URL_NOPAD used by the reference implementation.
var b64Encoding = base64.RawURLEncoding

// B64Encode encodes octets as a base64url-nopad string.
func B64Encode(octets []byte) string {
	return b64Encoding.EncodeToString(octets)
}

// B64Decode decodes a base64url-nopad string. It rejects padding
// characters and any byte outside the base64url alphabet: RawURLEncoding's
// decoder rejects both except CR and LF, which it would skip, so those are
// rejected explicitly first.
func B64Decode(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: line break in base64url input", errs.ErrEncoding)
	}
	octets, err := b64Encoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return octets, nil
}

// CanonicalJSON serializes v to JSON bytes. For maps this relies on the
// caller having already converted to an order-preserving representation
// (see the header package); encoding/json's own map handling sorts keys
// alphabetically and must never be used for anything that will be signed.
func CanonicalJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return b, nil
}

// DecodeJSON decodes JSON bytes into v, using json.Number for numeric
// leaves so that re-encoding does not reformat numbers (matching the
// UseNumber discipline the teacher's JWT layer applies to claim payloads).
func DecodeJSON(b []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return nil
}

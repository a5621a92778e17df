package jpt

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/Cybersecurity-LINKS/json-proof-token/errs"
)

// StandardClaims carries the RFC 7519-inspired claim names the reference
// implementation's JptClaims type keeps alongside arbitrary custom claims
// (sub, exp, nbf, iat, jti). Unlike "iss", which this module treats as an
// issuer header field per the data model, these are ordinary claims that
// flatten and disclose like any other payload; nothing in this module
// validates them against wall-clock time.
type StandardClaims struct {
	Sub string
	Exp int64
	Nbf int64
	Iat int64
	Jti string

	hasExp, hasNbf, hasIat bool
}

// SetExp sets the exp claim.
func (c *StandardClaims) SetExp(exp int64) { c.Exp, c.hasExp = exp, true }

// SetNbf sets the nbf claim.
func (c *StandardClaims) SetNbf(nbf int64) { c.Nbf, c.hasNbf = nbf, true }

// SetIat sets the iat claim.
func (c *StandardClaims) SetIat(iat int64) { c.Iat, c.hasIat = iat, true }

// Merge produces a claims JSON document combining c's standard claims with
// the arbitrary custom claims tree in customJSON, standard claims first, in
// the field order sub/exp/nbf/iat/jti, matching the reference
// implementation's struct field order.
func (c *StandardClaims) Merge(customJSON []byte) ([]byte, error) {
	om := orderedmap.New[string, interface{}]()

	if c.Sub != "" {
		om.Set("sub", c.Sub)
	}
	if c.hasExp {
		om.Set("exp", c.Exp)
	}
	if c.hasNbf {
		om.Set("nbf", c.Nbf)
	}
	if c.hasIat {
		om.Set("iat", c.Iat)
	}
	if c.Jti != "" {
		om.Set("jti", c.Jti)
	}

	if len(customJSON) > 0 {
		var custom map[string]json.RawMessage
		if err := json.Unmarshal(customJSON, &custom); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
		}
		for k, v := range custom {
			var decoded interface{}
			if err := json.Unmarshal(v, &decoded); err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
			}
			om.Set(k, decoded)
		}
	}

	b, err := json.Marshal(om)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncoding, err)
	}
	return b, nil
}

// Package credential decodes federated-login credentials into unverified
// identity claims. Nothing here checks a signature: trust is established only
// by the remote verifier, and the output is usable solely on the offline path.
package credential

import (
	"encoding/json"
	"fmt"
	"strings"

	"stayauth/internal/domain"
	"stayauth/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// segmentCount is the number of dot-separated parts of a signed token
const segmentCount = 3

// segmentDecoder accepts both padded and unpadded base64url segments
var segmentDecoder = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode parses the payload segment of a credential. The header and
// signature segments are counted but never interpreted.
func Decode(credential string) (*domain.UnverifiedClaim, error) {
	segments := strings.Split(credential, ".")
	if len(segments) != segmentCount {
		return nil, errors.NewMalformedCredentialError(
			fmt.Sprintf("credential has %d segments, want %d", len(segments), segmentCount), nil)
	}

	payload, err := segmentDecoder.DecodeSegment(segments[1])
	if err != nil {
		return nil, errors.NewMalformedCredentialError("credential payload is not base64url", err)
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errors.NewMalformedCredentialError("credential payload is not a claims object", err)
	}
	if claims == nil {
		return nil, errors.NewMalformedCredentialError("credential payload is empty", nil)
	}

	claim := &domain.UnverifiedClaim{
		Subject: stringClaim(claims, "sub", domain.DefaultClaimSubject),
		Name:    stringClaim(claims, "name", domain.DefaultClaimName),
		Email:   stringClaim(claims, "email", domain.DefaultClaimEmail),
		Picture: stringClaim(claims, "picture", ""),
	}

	// iat is informational; a missing or odd value leaves IssuedAt zero
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		claim.IssuedAt = iat.Time
	}

	return claim, nil
}

// stringClaim returns the claim when present as a string, else the fallback.
// An explicitly empty string is kept.
func stringClaim(claims jwt.MapClaims, key, fallback string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return fallback
}

package credential

import (
	stderrors "errors"
	"testing"
	"time"

	"stayauth/internal/domain"
	"stayauth/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-checked"))
	require.NoError(t, err)
	return token
}

func TestDecode_WellFormed(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		expected   domain.UnverifiedClaim
	}{
		{
			name:       "subject and email only",
			credential: "header.eyJzdWIiOiJ1MSIsImVtYWlsIjoiYUBiLmNvbSJ9.sig",
			expected: domain.UnverifiedClaim{
				Subject: "u1",
				Name:    domain.DefaultClaimName,
				Email:   "a@b.com",
			},
		},
		{
			name:       "padded payload without subject",
			credential: "h.eyJhIjoxfQ==.s",
			expected: domain.UnverifiedClaim{
				Subject: domain.DefaultClaimSubject,
				Name:    domain.DefaultClaimName,
				Email:   domain.DefaultClaimEmail,
			},
		},
		{
			name:       "explicit empty name is kept",
			credential: "h.eyJzdWIiOiJ1MiIsIm5hbWUiOiIiLCJpYXQiOjE3MDAwMDAwMDB9.s",
			expected: domain.UnverifiedClaim{
				Subject:  "u2",
				Name:     "",
				Email:    domain.DefaultClaimEmail,
				IssuedAt: time.Unix(1700000000, 0),
			},
		},
		{
			name:       "empty signature segment",
			credential: "h.eyJhIjoxfQ.",
			expected: domain.UnverifiedClaim{
				Subject: domain.DefaultClaimSubject,
				Name:    domain.DefaultClaimName,
				Email:   domain.DefaultClaimEmail,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := Decode(tt.credential)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Subject, claim.Subject)
			assert.Equal(t, tt.expected.Name, claim.Name)
			assert.Equal(t, tt.expected.Email, claim.Email)
			assert.Equal(t, tt.expected.Picture, claim.Picture)
			assert.True(t, tt.expected.IssuedAt.Equal(claim.IssuedAt))
		})
	}
}

func TestDecode_SignedToken(t *testing.T) {
	credential := mintCredential(t, jwt.MapClaims{
		"sub":     "10769150350006150715113082367",
		"name":    "Asha Rao",
		"email":   "asha@example.com",
		"picture": "https://lh3.googleusercontent.com/a/photo",
		"iat":     1716200000,
	})

	claim, err := Decode(credential)
	require.NoError(t, err)

	assert.Equal(t, "10769150350006150715113082367", claim.Subject)
	assert.Equal(t, "Asha Rao", claim.Name)
	assert.Equal(t, "asha@example.com", claim.Email)
	assert.Equal(t, "https://lh3.googleusercontent.com/a/photo", claim.Picture)
	assert.Equal(t, int64(1716200000), claim.IssuedAt.Unix())
}

func TestDecode_MissingOptionalFieldsNeverFail(t *testing.T) {
	payloads := []jwt.MapClaims{
		{},
		{"sub": "only-sub"},
		{"name": "only-name"},
		{"email": "only@mail"},
		{"picture": "p"},
		{"sub": 42, "iat": "not-a-number"},
	}

	for _, payload := range payloads {
		claim, err := Decode(mintCredential(t, payload))
		require.NoError(t, err)
		assert.NotEmpty(t, claim.Subject)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		credential string
	}{
		{"empty string", ""},
		{"one segment", "nosegments"},
		{"two segments", "header.eyJzdWIiOiJ1MSJ9"},
		{"four segments", "a.eyJzdWIiOiJ1MSJ9.c.d"},
		{"five segments", "a.b.c.d.e"},
		{"payload not base64url", "h.!!!.s"},
		{"payload not json", "h.bm90LWpzb24.s"},
		{"payload json array", "h.WzEsMl0.s"},
		{"payload json null", "h.bnVsbA.s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim, err := Decode(tt.credential)
			assert.Nil(t, claim)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrMalformedCredential))

			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeMalformedCredential, appErr.Type)
		})
	}
}

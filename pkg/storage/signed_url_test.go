package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("ticket-1", "hall-tickets/exam-1/stu-1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	docID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "ticket-1", docID)
	require.Equal(t, "hall-tickets/exam-1/stu-1.pdf", path)
	require.True(t, expiresAt.Equal(parsedExpiry))
}

func TestSignedURLSignerExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", 10*time.Millisecond)
	token, _, err := signer.Generate("ticket-1", "hall-tickets/file.pdf")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	require.ErrorIs(t, err, ErrInvalidToken)

	docID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "ticket-1", docID)
	require.Equal(t, "hall-tickets/file.pdf", path)
}

func TestSignedURLSignerRejectsForgery(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("ticket-1", "hall-tickets/file.pdf")
	require.NoError(t, err)

	other, _, err := signer.Generate("ticket-1", "hall-tickets/someone-else.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = strings.Split(other, ".")[1]
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)

	_, _, _, err = signer.Parse("not-a-token", true)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsOtherAudience(t *testing.T) {
	claims := jwt.RegisteredClaims{
		ID:        "user-1",
		Audience:  jwt.ClaimStrings{"api"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("secret", time.Hour).Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLSignerRequiresInputs(t *testing.T) {
	_, _, err := NewSignedURLSigner("secret", time.Hour).Generate("", "x.pdf")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("", time.Hour).Generate("id", "x.pdf")
	require.Error(t, err)
}

package service

import (
	"context"
	"testing"
	"time"

	"pharmapos/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	session, err := f.auth.SignUp(ctx, dto.SignUpRequest{Email: "Owner@Pharmacy.pk ", Password: "secret1", FirstName: "Ayesha"})
	require.NoError(t, err)
	assert.Equal(t, "owner@pharmacy.pk", session.User.Email)
	assert.Regexp(t, `^user_\d+_[0-9a-f]{9}$`, session.User.ID)
	assert.Equal(t, 24*3600, session.ExpiresIn)

	userID, err := f.auth.ParseToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, userID)

	_, err = f.auth.SignUp(ctx, dto.SignUpRequest{Email: "owner@pharmacy.pk", Password: "another"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	again, err := f.auth.SignIn(ctx, dto.SignInRequest{Email: "OWNER@pharmacy.pk", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)

	me, err := f.auth.CurrentUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ayesha", me.FirstName)

	require.NoError(t, f.auth.SignOut(ctx, userID))
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.auth.SignUp(ctx, dto.SignUpRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	cases := map[string]dto.SignInRequest{
		"unknown email":  {Email: "x@b.co", Password: "secret1"},
		"wrong password": {Email: "a@b.co", Password: "secret2"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.SignIn(ctx, req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestParseToken_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session, err := f.auth.SignUp(ctx, dto.SignUpRequest{Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	other := NewAuthService(nil, "other-secret", 24)
	_, err = other.ParseToken(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.auth.now = func() time.Time { return fixedNow.Add(25 * time.Hour) }
	_, err = f.auth.ParseToken(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "expired")
}

func TestAsk_LocalModeIsUnavailable(t *testing.T) {
	f := newFixture(t)
	_, err := NewAIService(f.db).Ask(context.Background(), "u1", "What is the adult dose of ibuprofen?")
	assert.ErrorIs(t, err, ErrFeatureUnavailable)
	assert.Contains(t, err.Error(), "not available in local mode")
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("s3cret", "user-1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "postgen", claims.Issuer)
}

func TestValidateToken_Rejects(t *testing.T) {
	token, err := GenerateToken("s3cret", "user-1", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("s3cret", "user-1", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("s3cret", expired)
	assert.Error(t, err)

	_, err = GenerateToken("", "user-1", time.Hour)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

package auth

import (
	"context"
	"testing"

	"pos-onboarding-workers/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoogleTokenSource_StaticToken(t *testing.T) {
	ts, err := NewGoogleTokenSource(context.Background(), config.GoogleConfig{AccessToken: "ya29.local"})
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.local", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

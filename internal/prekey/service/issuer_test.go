package service

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_GenerateBundle(t *testing.T) {
	issuer := NewIssuer()
	ctx := context.Background()

	bundle, err := issuer.GenerateBundle(ctx)
	require.NoError(t, err)

	assert.NoError(t, bundle.Validate())
	assert.GreaterOrEqual(t, bundle.RegistrationID, uint32(1))
	assert.LessOrEqual(t, bundle.RegistrationID, uint32(16383))
	assert.Equal(t, uint32(1), bundle.DeviceID)
	assert.Len(t, bundle.IdentityKey, 32)
	assert.Len(t, bundle.PreKeyPublic, 32)
	assert.Len(t, bundle.SignedPreKeyPublic, 32)
	assert.Len(t, bundle.SignedPreKeySignature, 64)
	assert.GreaterOrEqual(t, bundle.PreKeyID, uint32(1))
	assert.GreaterOrEqual(t, bundle.SignedPreKeyID, uint32(1))

	// Reserved post-quantum fields stay null.
	assert.Nil(t, bundle.KyberPreKeyID)
	assert.Nil(t, bundle.KyberPreKeyPublic)
	assert.Nil(t, bundle.KyberPreKeySignature)
}

func TestIssuer_SignatureVerifiesUnderIdentityKey(t *testing.T) {
	issuer := NewIssuer()

	bundle, err := issuer.GenerateBundle(context.Background())
	require.NoError(t, err)

	publicKey := ed25519.PublicKey(bundle.IdentityKey)
	assert.True(t, ed25519.Verify(publicKey, bundle.SignedPreKeyPublic, bundle.SignedPreKeySignature))
}

func TestIssuer_BundlesAreIndependent(t *testing.T) {
	issuer := NewIssuer()
	ctx := context.Background()

	first, err := issuer.GenerateBundle(ctx)
	require.NoError(t, err)
	second, err := issuer.GenerateBundle(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.IdentityKey, second.IdentityKey)
	assert.NotEqual(t, first.PreKeyPublic, second.PreKeyPublic)
	assert.NotEqual(t, first.SignedPreKeyPublic, second.SignedPreKeyPublic)
	assert.NotEqual(t, first.SignedPreKeySignature, second.SignedPreKeySignature)
}

func TestIssuer_RegistrationIDsStayInRange(t *testing.T) {
	issuer := NewIssuer()
	ctx := context.Background()

	for i := 0; i < 64; i++ {
		bundle, err := issuer.GenerateBundle(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bundle.RegistrationID, uint32(1))
		assert.LessOrEqual(t, bundle.RegistrationID, uint32(16383))
	}
}

// Package service implements pre-key bundle issuance for e2ee onboarding.
package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/curve25519"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	apperrors "github.com/linguachat/encryption/internal/errors"
	"github.com/linguachat/encryption/internal/guard"
	prekeyDomain "github.com/linguachat/encryption/internal/prekey/domain"
)

// Issuer generates pre-key bundles for clients entering e2ee conversations.
type Issuer interface {
	GenerateBundle(ctx context.Context) (*prekeyDomain.PreKeyBundle, error)
}

type bundleIssuer struct{}

// NewIssuer creates a pre-key bundle issuer.
//
// The issuer is stateless: every bundle draws fresh randomness and no
// counter or cache is shared between calls, so issuance order cannot be
// inferred from bundle contents.
func NewIssuer() Issuer {
	return &bundleIssuer{}
}

// GenerateBundle issues one pre-key bundle.
//
// The identity key is an Ed25519 public key whose private half signs the
// signed pre-key public. Pre-key publics are X25519 points. The private
// halves are zeroed before return: this issuer only hands out the public
// material, client key agreement happens elsewhere.
func (b *bundleIssuer) GenerateBundle(_ context.Context) (*prekeyDomain.PreKeyBundle, error) {
	identityPublic, identityPrivate, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate identity key")
	}
	defer cryptoDomain.Zero(identityPrivate)

	preKeyPublic, err := newX25519Public()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate pre-key")
	}

	signedPreKeyPublic, err := newX25519Public()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate signed pre-key")
	}

	registrationID, err := randomRegistrationID()
	if err != nil {
		return nil, err
	}

	preKeyID, err := randomKeyID()
	if err != nil {
		return nil, err
	}

	signedPreKeyID, err := randomKeyID()
	if err != nil {
		return nil, err
	}

	bundle := &prekeyDomain.PreKeyBundle{
		RegistrationID:        registrationID,
		DeviceID:              1,
		IdentityKey:           identityPublic,
		PreKeyID:              preKeyID,
		PreKeyPublic:          preKeyPublic,
		SignedPreKeyID:        signedPreKeyID,
		SignedPreKeyPublic:    signedPreKeyPublic,
		SignedPreKeySignature: ed25519.Sign(identityPrivate, signedPreKeyPublic),
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	return bundle, nil
}

// newX25519Public derives a fresh X25519 public key and discards the
// private scalar.
func newX25519Public() ([]byte, error) {
	private := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(private); err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(private)

	return curve25519.X25519(private, curve25519.Basepoint)
}

// randomRegistrationID draws a uniform id in [1, MaxRegistrationID] by
// rejection sampling: mask to 14 bits, reject zero.
func randomRegistrationID() (uint32, error) {
	var buf [2]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, apperrors.Wrap(err, "failed to generate registration id")
		}
		id := uint32(binary.BigEndian.Uint16(buf[:])) & guard.MaxRegistrationID
		if id != 0 {
			return id, nil
		}
	}
}

// randomKeyID draws a uniform positive id within the 31-bit ceiling.
func randomKeyID() (uint32, error) {
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, apperrors.Wrap(err, "failed to generate pre-key id")
		}
		id := binary.BigEndian.Uint32(buf[:]) & guard.MaxMessageNumber
		if id != 0 {
			return id, nil
		}
	}
}

// Package domain contains the pre-key bundle issued to clients that
// onboard into end-to-end encrypted conversations.
package domain

import (
	"github.com/linguachat/encryption/internal/errors"
	"github.com/linguachat/encryption/internal/guard"
)

// SignatureSize is the length of the signature over the signed pre-key.
const SignatureSize = 64

// ErrInvalidPreKeyID indicates a bundle carries a zero pre-key identifier.
// Issued identifiers start at 1; zero marks an unset field.
var ErrInvalidPreKeyID = errors.Wrap(errors.ErrInvalidInput, "pre-key id must be positive")

// PreKeyBundle is the asymmetric key material a client needs to start an
// e2ee session. Bundles are immutable once issued; replacing one means
// issuing a new bundle with fresh identifiers.
//
// The Kyber fields are reserved for post-quantum pre-keys and always
// serialize as null.
type PreKeyBundle struct {
	RegistrationID        uint32 `json:"registrationId"`
	DeviceID              uint32 `json:"deviceId"`
	IdentityKey           []byte `json:"identityKey"`
	PreKeyID              uint32 `json:"preKeyId"`
	PreKeyPublic          []byte `json:"preKeyPublic"`
	SignedPreKeyID        uint32 `json:"signedPreKeyId"`
	SignedPreKeyPublic    []byte `json:"signedPreKeyPublic"`
	SignedPreKeySignature []byte `json:"signedPreKeySignature"`

	KyberPreKeyID        *uint32 `json:"kyberPreKeyId"`
	KyberPreKeyPublic    []byte  `json:"kyberPreKeyPublic"`
	KyberPreKeySignature []byte  `json:"kyberPreKeySignature"`
}

// Validate checks the bundle against the contractual bounds. The issuer
// runs this before handing a bundle out; transports may rerun it on
// bundles they receive.
func (b *PreKeyBundle) Validate() error {
	if err := guard.RegistrationID(int64(b.RegistrationID)); err != nil {
		return err
	}
	if err := guard.KeyBuffer(b.IdentityKey, guard.KeySize, "identity key"); err != nil {
		return err
	}
	if err := guard.PreKeyID(int64(b.PreKeyID)); err != nil {
		return err
	}
	if b.PreKeyID == 0 {
		return ErrInvalidPreKeyID
	}
	if err := guard.KeyBuffer(b.PreKeyPublic, guard.KeySize, "pre-key public"); err != nil {
		return err
	}
	if err := guard.PreKeyID(int64(b.SignedPreKeyID)); err != nil {
		return err
	}
	if b.SignedPreKeyID == 0 {
		return ErrInvalidPreKeyID
	}
	if err := guard.KeyBuffer(b.SignedPreKeyPublic, guard.KeySize, "signed pre-key public"); err != nil {
		return err
	}
	return guard.KeyBuffer(b.SignedPreKeySignature, SignatureSize, "signed pre-key signature")
}

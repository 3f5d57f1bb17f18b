// Package domain defines the self-describing ciphertext envelope exchanged
// between the messaging pipeline and the encryption engine, plus its
// persisted storage form.
package domain

// Mode identifies who performs the encryption for a conversation.
type Mode string

const (
	// ModeServer means the server encrypts and decrypts message content
	// with a per-conversation key it safeguards.
	ModeServer Mode = "server"

	// ModeE2EE means clients encrypt end to end; the server only stores
	// opaque ciphertext and never holds the keys.
	ModeE2EE Mode = "e2ee"
)

// Protocol identifiers carried in envelope metadata. Mode and protocol are
// always consistent: server mode pairs with ProtocolServerAEAD, e2ee with
// ProtocolE2EE.
const (
	// ProtocolServerAEAD names the server-side AEAD scheme (a 256-bit key
	// AEAD cipher, AES-256-GCM or ChaCha20-Poly1305).
	ProtocolServerAEAD = "aead-256"

	// ProtocolE2EE names the client ratchet scheme used in e2ee mode.
	ProtocolE2EE = "signal-double-ratchet"
)

// ProtocolForMode returns the protocol identifier paired with a mode.
func ProtocolForMode(mode Mode) string {
	if mode == ModeE2EE {
		return ProtocolE2EE
	}
	return ProtocolServerAEAD
}

// Metadata describes everything needed to decrypt an envelope later: which
// mode produced it, under which protocol, with which key, IV, and tag.
// Binary fields are standard base64.
type Metadata struct {
	Mode     Mode   `json:"mode"`
	Protocol string `json:"protocol"`
	KeyID    string `json:"keyId"`
	IV       string `json:"iv"`
	AuthTag  string `json:"authTag"`
}

// EncryptedPayload pairs base64 ciphertext with its metadata. The IV is
// unique per encryption under a given key; re-encryption always mints a
// fresh one.
type EncryptedPayload struct {
	Ciphertext string   `json:"ciphertext"`
	Metadata   Metadata `json:"metadata"`
}

// StorageRecord is the persisted projection of an envelope, shaped for the
// message store's columns.
type StorageRecord struct {
	EncryptedContent   string   `json:"encryptedContent"`
	EncryptionMetadata Metadata `json:"encryptionMetadata"`
	EncryptionMode     Mode     `json:"encryptionMode"`
	IsEncrypted        bool     `json:"isEncrypted"`
}

// PrepareForStorage converts an envelope into its storage record. Pure and
// lossless: ReconstructPayload inverts it exactly.
func PrepareForStorage(payload *EncryptedPayload) StorageRecord {
	return StorageRecord{
		EncryptedContent:   payload.Ciphertext,
		EncryptionMetadata: payload.Metadata,
		EncryptionMode:     payload.Metadata.Mode,
		IsEncrypted:        true,
	}
}

// ReconstructPayload rebuilds the envelope from its storage record.
func ReconstructPayload(record StorageRecord) *EncryptedPayload {
	return &EncryptedPayload{
		Ciphertext: record.EncryptedContent,
		Metadata:   record.EncryptionMetadata,
	}
}

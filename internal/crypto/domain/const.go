package domain

// Algorithm represents the AEAD algorithm used for encryption.
//
// Both supported algorithms provide Authenticated Encryption with Associated
// Data with 256-bit keys, 12-byte nonces, and 16-byte tags. AESGCM is the
// default and benefits from AES-NI on server hardware; ChaCha20 is kept for
// deployments without hardware AES.
type Algorithm string

const (
	// AESGCM is AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeyPurpose labels what a wrapped key protects. Stored with the record so
// key material can never be silently repurposed.
type KeyPurpose string

const (
	// PurposeConversationData marks a per-conversation message content key.
	PurposeConversationData KeyPurpose = "conversation-data"
)

package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// used to wrap conversation content keys. Key material is zeroed from memory
// after encoding.
//
// Without KMS parameters the raw key is printed base64-encoded for direct use
// in MASTER_KEY. With both kmsProvider and kmsKeyURI set, the key is encrypted
// by the KMS first and MASTER_KEY holds the ciphertext; the server decrypts it
// at startup through the same KMS key.
//
// Security: Never use the localsecrets provider in production. Use cloud KMS
// providers (gcpkms, awskms, azurekeyvault, hashivault).
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	out io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri must be set together")
	}

	// Generate a cryptographically secure 32-byte master key
	masterKey := make([]byte, 32)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	if kmsProvider == "" {
		fmt.Fprintln(out, "# Master Key Configuration (plain mode)")
		fmt.Fprintln(out, "# Copy this environment variable to your .env file or secrets manager")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(masterKey))
		return nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			fmt.Fprintf(out, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	// Encrypt master key with KMS
	ciphertext, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	fmt.Fprintln(out, "# Master Key Configuration (KMS mode)")
	fmt.Fprintln(out, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	fmt.Fprintf(out, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Fprintf(out, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}

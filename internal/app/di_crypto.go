package app

import (
	"context"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoRepository "github.com/linguachat/encryption/internal/crypto/repository"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
	cryptoUseCase "github.com/linguachat/encryption/internal/crypto/usecase"
)

// MasterKey returns the process master key.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	var err error
	c.masterKeyInit.Do(func() {
		c.masterKey, err = c.initMasterKey()
		if err != nil {
			c.initErrors["masterKey"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterKey"]; exists {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyWrapper returns the key wrapper service.
func (c *Container) KeyWrapper() (cryptoService.KeyWrapper, error) {
	var err error
	c.keyWrapperInit.Do(func() {
		c.keyWrapper, err = c.initKeyWrapper()
		if err != nil {
			c.initErrors["keyWrapper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyWrapper"]; exists {
		return nil, storedErr
	}
	return c.keyWrapper, nil
}

// WrappedKeyRepository returns the wrapped key repository based on the database driver.
func (c *Container) WrappedKeyRepository() (cryptoUseCase.WrappedKeyRepository, error) {
	var err error
	c.wrappedKeyRepoInit.Do(func() {
		c.wrappedKeyRepo, err = c.initWrappedKeyRepository()
		if err != nil {
			c.initErrors["wrappedKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["wrappedKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.wrappedKeyRepo, nil
}

// KeyStore returns the key store use case.
func (c *Container) KeyStore() (cryptoUseCase.KeyStore, error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = c.initKeyStore()
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// initMasterKey loads the master key from configuration.
//
// When a KMS key URI is configured, MASTER_KEY holds the master key
// encrypted by the KMS and the keeper decrypts it once at startup.
// Otherwise MASTER_KEY holds the base64-encoded raw key.
func (c *Container) initMasterKey() (*cryptoDomain.MasterKey, error) {
	if c.config.MasterKey == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	encoded, err := base64.StdEncoding.DecodeString(c.config.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidMasterKeyBase64, err)
	}
	defer cryptoDomain.Zero(encoded)

	if c.config.KMSKeyURI == "" {
		return cryptoDomain.NewMasterKey(encoded)
	}

	ctx := context.Background()
	keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master key with KMS: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.NewMasterKey(plaintext)
}

// initKeyWrapper creates the key wrapper using the master key and configured algorithm.
func (c *Container) initKeyWrapper() (cryptoService.KeyWrapper, error) {
	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for key wrapper: %w", err)
	}

	keyWrapper, err := cryptoService.NewKeyWrapper(
		masterKey,
		c.AEADManager(),
		cryptoDomain.Algorithm(c.config.EncryptionAlgorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key wrapper: %w", err)
	}
	return keyWrapper, nil
}

// initWrappedKeyRepository creates the wrapped key repository based on the database driver.
func (c *Container) initWrappedKeyRepository() (cryptoUseCase.WrappedKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for wrapped key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLWrappedKeyRepository(db), nil
	case "mysql":
		return cryptoRepository.NewMySQLWrappedKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initKeyStore creates the key store use case with all its dependencies.
func (c *Container) initKeyStore() (cryptoUseCase.KeyStore, error) {
	wrappedKeyRepo, err := c.WrappedKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get wrapped key repository for key store: %w", err)
	}

	keyWrapper, err := c.KeyWrapper()
	if err != nil {
		return nil, fmt.Errorf("failed to get key wrapper for key store: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for key store: %w", err)
	}

	keyStore := cryptoUseCase.NewKeyStore(wrappedKeyRepo, keyWrapper)
	return cryptoUseCase.NewKeyStoreWithMetrics(keyStore, businessMetrics), nil
}

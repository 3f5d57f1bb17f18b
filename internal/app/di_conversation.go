package app

import (
	"fmt"

	conversationHTTP "github.com/linguachat/encryption/internal/conversation/http"
	conversationRepository "github.com/linguachat/encryption/internal/conversation/repository"
	conversationUseCase "github.com/linguachat/encryption/internal/conversation/usecase"
)

// SettingsRepository returns the conversation settings repository based on the database driver.
func (c *Container) SettingsRepository() (conversationUseCase.SettingsRepository, error) {
	var err error
	c.settingsRepoInit.Do(func() {
		c.settingsRepo, err = c.initSettingsRepository()
		if err != nil {
			c.initErrors["settingsRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["settingsRepo"]; exists {
		return nil, storedErr
	}
	return c.settingsRepo, nil
}

// EncryptionSettings returns the conversation encryption settings use case.
func (c *Container) EncryptionSettings() (conversationUseCase.EncryptionSettings, error) {
	var err error
	c.encryptionSettingsInit.Do(func() {
		c.encryptionSettings, err = c.initEncryptionSettings()
		if err != nil {
			c.initErrors["encryptionSettings"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionSettings"]; exists {
		return nil, storedErr
	}
	return c.encryptionSettings, nil
}

// EncryptionHandler returns the conversation encryption HTTP handler.
func (c *Container) EncryptionHandler() (*conversationHTTP.EncryptionHandler, error) {
	var err error
	c.encryptionHandlerInit.Do(func() {
		c.encryptionHandler, err = c.initEncryptionHandler()
		if err != nil {
			c.initErrors["encryptionHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionHandler"]; exists {
		return nil, storedErr
	}
	return c.encryptionHandler, nil
}

// initSettingsRepository creates the settings repository based on the database driver.
func (c *Container) initSettingsRepository() (conversationUseCase.SettingsRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for settings repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return conversationRepository.NewPostgreSQLSettingsRepository(db), nil
	case "mysql":
		return conversationRepository.NewMySQLSettingsRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEncryptionSettings creates the encryption settings use case with all its dependencies.
func (c *Container) initEncryptionSettings() (conversationUseCase.EncryptionSettings, error) {
	settingsRepo, err := c.SettingsRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings repository for encryption settings: %w", err)
	}

	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for encryption settings: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for encryption settings: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for encryption settings: %w", err)
	}

	settings := conversationUseCase.NewEncryptionSettings(
		settingsRepo,
		keyStore,
		conversationUseCase.HeaderTrustAuthorizer{},
		conversationUseCase.NoOpNoticePublisher{},
		txManager,
		c.Logger(),
	)
	return conversationUseCase.NewEncryptionSettingsWithMetrics(settings, businessMetrics), nil
}

// initEncryptionHandler creates the encryption HTTP handler.
func (c *Container) initEncryptionHandler() (*conversationHTTP.EncryptionHandler, error) {
	encryptionSettings, err := c.EncryptionSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption settings for encryption handler: %w", err)
	}

	return conversationHTTP.NewEncryptionHandler(encryptionSettings, c.Logger()), nil
}

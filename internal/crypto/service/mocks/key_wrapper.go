// Package mocks provides mock implementations of cryptographic services for testing.
package mocks

import (
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/linguachat/encryption/internal/crypto/domain"
	cryptoService "github.com/linguachat/encryption/internal/crypto/service"
)

// MockKeyWrapper is a mock implementation of KeyWrapper for testing.
type MockKeyWrapper struct {
	mock.Mock
}

// GenerateKey mocks the GenerateKey method of KeyWrapper.
func (m *MockKeyWrapper) GenerateKey() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Wrap mocks the Wrap method of KeyWrapper.
func (m *MockKeyWrapper) Wrap(plainKey []byte) (cryptoService.WrappedKeyMaterial, error) {
	args := m.Called(plainKey)
	return args.Get(0).(cryptoService.WrappedKeyMaterial), args.Error(1)
}

// Unwrap mocks the Unwrap method of KeyWrapper.
func (m *MockKeyWrapper) Unwrap(material cryptoService.WrappedKeyMaterial) ([]byte, error) {
	args := m.Called(material)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Algorithm mocks the Algorithm method of KeyWrapper.
func (m *MockKeyWrapper) Algorithm() cryptoDomain.Algorithm {
	args := m.Called()
	return args.Get(0).(cryptoDomain.Algorithm)
}

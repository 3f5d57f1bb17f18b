package http

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prekeyService "github.com/linguachat/encryption/internal/prekey/service"
)

func setupTestPreKeyHandler(t *testing.T) *PreKeyHandler {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewPreKeyHandler(prekeyService.NewIssuer(), logger)
}

func TestPreKeyHandler_GenerateBundleHandler(t *testing.T) {
	handler := setupTestPreKeyHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/prekeys/bundle", nil)

	handler.GenerateBundleHandler(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	response := envelope.Data

	registrationID, ok := response["registrationId"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, registrationID, float64(1))
	assert.LessOrEqual(t, registrationID, float64(16383))
	assert.Equal(t, float64(1), response["deviceId"])

	identityKey, err := base64.StdEncoding.DecodeString(response["identityKey"].(string))
	require.NoError(t, err)
	assert.Len(t, identityKey, 32)

	signature, err := base64.StdEncoding.DecodeString(response["signedPreKeySignature"].(string))
	require.NoError(t, err)
	assert.Len(t, signature, 64)

	// Reserved post-quantum fields serialize as null.
	assert.Nil(t, response["kyberPreKeyId"])
	assert.Nil(t, response["kyberPreKeyPublic"])
	assert.Nil(t, response["kyberPreKeySignature"])
}

func TestPreKeyHandler_BundlesDiffer(t *testing.T) {
	handler := setupTestPreKeyHandler(t)

	issue := func() map[string]any {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/prekeys/bundle", nil)

		handler.GenerateBundleHandler(c)
		require.Equal(t, http.StatusCreated, w.Code)

		var envelope struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		return envelope.Data
	}

	first := issue()
	second := issue()

	assert.NotEqual(t, first["identityKey"], second["identityKey"])
	assert.NotEqual(t, first["preKeyPublic"], second["preKeyPublic"])
}

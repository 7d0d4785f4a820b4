package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/domain/sync"
	"aegis/internal/shared/logger"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
services:
  - name: chat
    kind: chat
    base_url: https://chat.example.com
    api_token: secret
    timeout_seconds: 5
  - name: forum
    kind: forum
    base_url: https://forum.example.com
    api_token: secret
`)

	registry, err := LoadRegistry(path, logger.NewNop())

	require.NoError(t, err)
	assert.Equal(t, []string{"chat", "forum"}, registry.Names())

	adapter, ok := registry.Get("chat")
	require.True(t, ok)
	assert.Equal(t, "chat", adapter.Name())

	_, ok = registry.Get("voice")
	assert.False(t, ok)
}

func TestLoadRegistry_UnknownKind(t *testing.T) {
	path := writeRegistry(t, `
services:
  - name: voice
    kind: teamspeak
    base_url: https://voice.example.com
`)

	_, err := LoadRegistry(path, logger.NewNop())
	assert.ErrorContains(t, err, "unknown service kind")
}

func TestLoadRegistry_DuplicateName(t *testing.T) {
	path := writeRegistry(t, `
services:
  - name: chat
    kind: chat
    base_url: https://a.example.com
  - name: chat
    kind: forum
    base_url: https://b.example.com
`)

	_, err := LoadRegistry(path, logger.NewNop())
	assert.ErrorContains(t, err, "duplicate service name")
}

func TestLoadRegistry_Empty(t *testing.T) {
	path := writeRegistry(t, "services: []\n")

	_, err := LoadRegistry(path, logger.NewNop())
	assert.ErrorContains(t, err, "configures no services")
}

func TestChatAdapterSanitize(t *testing.T) {
	adapter := NewChatAdapter("chat", "https://chat.example.com", "token", 0, logger.NewNop())

	assert.Equal(t, "corp-securite-premiere", adapter.SanitizeGroupName("Corp Sécurité Première"))
	assert.Equal(t, "member", adapter.SanitizeGroupName("Member"))
}

func TestForumAdapterSanitize(t *testing.T) {
	adapter := NewForumAdapter("forum", "https://forum.example.com", "token", 0, logger.NewNop())

	assert.Equal(t, "Corp Securite Premiere", adapter.SanitizeGroupName("Corp Sécurité Première"))
}

func TestClassifyStatus(t *testing.T) {
	assert.NoError(t, classifyStatus(200, "/x"))
	assert.NoError(t, classifyStatus(204, "/x"))

	kindOf := func(status int) string {
		err := classifyStatus(status, "/x")
		require.Error(t, err)
		return string(sync.KindOf(err))
	}

	assert.Equal(t, "identity_mismatch", kindOf(404))
	assert.Equal(t, "identity_mismatch", kindOf(410))
	assert.Equal(t, "unrecoverable", kindOf(401))
	assert.Equal(t, "unrecoverable", kindOf(403))
	assert.Equal(t, "transient", kindOf(429))
	assert.Equal(t, "transient", kindOf(500))
	assert.Equal(t, "transient", kindOf(503))
	assert.Equal(t, "validation", kindOf(409))
	assert.Equal(t, "unrecoverable", kindOf(418))
}

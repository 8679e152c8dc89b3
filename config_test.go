package telemock_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telemock/telemock"
)

func TestConfigDefaults(t *testing.T) {
	s := newServer(t)
	cfg := s.Config()

	assert.Equal(t, "localhost:8081", cfg.Listen)
	assert.Equal(t, int64(12345), cfg.ChatID)
	assert.Equal(t, "MockBot", cfg.Bot.FirstName)
	assert.Equal(t, "test_user", cfg.User.Username)
	assert.Equal(t, ".telemock_history.json", cfg.History.File)
	assert.Equal(t, 30*time.Second, cfg.History.SaveInterval)
	assert.Equal(t, "localhost:8082", cfg.Web.Listen)
}

func TestConfigUserDefaultsToChatID(t *testing.T) {
	s := newServer(t, telemock.Options{
		Config: telemock.Config{ChatID: 777},
		Logger: telemock.NoopLogger{},
	})

	assert.Equal(t, int64(777), s.TestUser().ID)
	assert.Equal(t, int64(777), s.Config().ChatID)
}

func TestConfigReadYAML(t *testing.T) {
	raw := `
listen: "127.0.0.1:9000"
chat_id: 999
bot:
  id: 42
  first_name: "YamlBot"
  username: "yaml_bot"
history:
  save: true
  save_interval: 5s
`
	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte(raw), 0o644))

	var cfg telemock.Config
	require.NoError(t, cfg.Read(file))

	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, int64(999), cfg.ChatID)
	assert.Equal(t, "yaml_bot", cfg.Bot.Username)
	assert.True(t, cfg.History.Save)
	assert.Equal(t, 5*time.Second, cfg.History.SaveInterval)
}

func TestConfigReadUnsupportedExtension(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(file, []byte("listen = \"x\""), 0o644))

	var cfg telemock.Config
	err := cfg.Read(file)
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, telemock.ErrUnsupportedFormat))
}

func TestConfigInvalidChatID(t *testing.T) {
	_, err := telemock.New(telemock.Options{
		Config: telemock.Config{ChatID: -5},
		Logger: telemock.NoopLogger{},
	})
	assert.Error(t, err)
}

func TestDatabaseConfig(t *testing.T) {
	assert.False(t, telemock.DatabaseConfig{}.Enabled())
	assert.True(t, telemock.DatabaseConfig{Address: "localhost:27017"}.Enabled())

	// An address without a database name is rejected.
	err := telemock.DatabaseConfig{Address: "localhost:27017"}.Validate()
	assert.Error(t, err)

	err = telemock.DatabaseConfig{Address: "localhost:27017", DBName: "telemock"}.Validate()
	assert.NoError(t, err)

	// Credentials must come in pairs.
	err = telemock.DatabaseConfig{Address: "a", DBName: "b", Username: "user"}.Validate()
	assert.Error(t, err)
}

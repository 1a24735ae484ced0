package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		err := loadDotEnv(filepath.Join(t.TempDir(), ".env"))
		assert.NoError(t, err)
	})

	t.Run("sets variables without overriding the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SITECHAT_TEST_FROM_FILE=file\nSITECHAT_TEST_PRESET=file\n"), 0o600))
		t.Setenv("SITECHAT_TEST_PRESET", "env")
		t.Setenv("SITECHAT_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("SITECHAT_TEST_FROM_FILE"))

		require.NoError(t, loadDotEnv(path))

		assert.Equal(t, "file", os.Getenv("SITECHAT_TEST_FROM_FILE"))
		assert.Equal(t, "env", os.Getenv("SITECHAT_TEST_PRESET"))
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_FILE", "")
	t.Setenv("DIVIDER_STICKER", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("PROMO_KEYWORDS_FILE", "")
	t.Setenv("CAPTION_TEXT", "")
	t.Setenv("CAPTION_POSITION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.CaptionText)
	assert.Equal(t, "bottom", cfg.CaptionPosition)

	assert.Equal(t, "./data/relaybot_session.db", cfg.SessionFile)
	assert.Equal(t, DefaultDividerSticker, cfg.DividerSticker)
	assert.Equal(t, 0, cfg.HTTPPort)
	assert.Equal(t, 2.0, cfg.TGRPS)
	assert.Nil(t, cfg.PromoKeywords)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "hash")
	t.Setenv("TG_BOT_TOKEN", "1:token")
	t.Setenv("OWNER_ID", "777000111")
	t.Setenv("HTTP_PORT", "3100")
	t.Setenv("TG_RPS", "not-a-number")
	t.Setenv("CAPTION_TEXT", "via @relay")
	t.Setenv("CAPTION_POSITION", "top")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.TGApiID)
	assert.Equal(t, int64(777000111), cfg.OwnerID)
	assert.Equal(t, 3100, cfg.HTTPPort)
	assert.Equal(t, 2.0, cfg.TGRPS, "invalid float falls back to default")
	assert.Equal(t, "via @relay", cfg.CaptionText)
	assert.Equal(t, "top", cfg.CaptionPosition)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{TGApiID: 1, TGApiHash: "h"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TG_BOT_TOKEN")

	cfg = &Config{TGBotToken: "t"}
	assert.Error(t, cfg.Validate())
}

func TestLoadPromoKeywords(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads keyword list", func(t *testing.T) {
		path := filepath.Join(dir, "promo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - powered by\n  - join now\n"), 0o600))

		keywords, err := LoadPromoKeywords(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"powered by", "join now"}, keywords)
	})

	t.Run("rejects empty list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keywords: []\n"), 0o600))

		_, err := LoadPromoKeywords(path)
		assert.Error(t, err)
	})

	t.Run("rejects invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keywords: [unterminated\n"), 0o600))

		_, err := LoadPromoKeywords(path)
		assert.Error(t, err)
	})

	t.Run("load wires the file", func(t *testing.T) {
		path := filepath.Join(dir, "wired.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - mirror\n"), 0o600))
		t.Setenv("PROMO_KEYWORDS_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"mirror"}, cfg.PromoKeywords)
	})
}

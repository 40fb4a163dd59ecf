package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Connections: map[string]ConnectionProfile{
			"local": {
				Host:     "localhost",
				Port:     5432,
				User:     "finboard",
				Password: "secret-password-value",
				DBName:   "finboard",
				SSLMode:  "disable",
			},
		},
		Options:        Options{DefaultConnection: "local"},
		Provider:       "gemini",
		ModelName:      DefaultModel,
		EmbedderModel:  DefaultEmbedderModel,
		TopK:           DefaultTopK,
		LinkTTLSeconds: DefaultLinkTTLSeconds,
	}
}

func TestDefaultProfile(t *testing.T) {
	cfg := validConfig()

	p, err := cfg.DefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "localhost", p.Host)
	assert.Equal(t, 5432, p.Port)
}

func TestDefaultProfile_NoConnections(t *testing.T) {
	cfg := &Config{}

	_, err := cfg.DefaultProfile()
	assert.ErrorIs(t, err, ErrNoConnections)
}

func TestDefaultProfile_NamedProfileAbsent(t *testing.T) {
	cfg := validConfig()
	cfg.Options.DefaultConnection = "prod"

	_, err := cfg.DefaultProfile()
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Contains(t, err.Error(), "prod")
}

func TestDefaultProfile_DefaultNotSet(t *testing.T) {
	cfg := validConfig()
	cfg.Options.DefaultConnection = ""

	_, err := cfg.DefaultProfile()
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = " " },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "top_k too small",
			mutate:  func(c *Config) { c.TopK = 0 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "top_k too large",
			mutate:  func(c *Config) { c.TopK = MaxTopK + 1 },
			wantErr: ErrInvalidTopK,
		},
		{
			name:    "non-positive link ttl",
			mutate:  func(c *Config) { c.LinkTTLSeconds = 0 },
			wantErr: ErrInvalidLinkTTL,
		},
		{
			name: "bad profile port",
			mutate: func(c *Config) {
				p := c.Connections["local"]
				p.Port = 0
				c.Connections["local"] = p
			},
			wantErr: ErrInvalidPort,
		},
		{
			name: "bad sslmode",
			mutate: func(c *Config) {
				p := c.Connections["local"]
				p.SSLMode = "maybe"
				c.Connections["local"] = p
			},
			wantErr: ErrInvalidSSLMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateServe_RequiresSigningSecret(t *testing.T) {
	cfg := validConfig()

	err := cfg.ValidateServe()
	assert.ErrorIs(t, err, ErrMissingSigningSecret)

	cfg.SigningSecret = "short"
	err = cfg.ValidateServe()
	assert.ErrorIs(t, err, ErrMissingSigningSecret)

	cfg.SigningSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.ValidateServe())
}

func TestConnectionString_QuotesPassword(t *testing.T) {
	p := ConnectionProfile{
		Host:     "localhost",
		Port:     5432,
		User:     "u",
		Password: "pa ss'word",
		DBName:   "db",
		SSLMode:  "disable",
	}

	dsn := p.ConnectionString()
	assert.Contains(t, dsn, `password='pa ss\'word'`)
	assert.Contains(t, dsn, "host=localhost")
}

func TestURL_EncodesCredentials(t *testing.T) {
	p := ConnectionProfile{
		Host:     "localhost",
		Port:     5432,
		User:     "user@corp",
		Password: "p@ss/word",
		DBName:   "db",
		SSLMode:  "require",
	}

	u := p.URL()
	assert.True(t, strings.HasPrefix(u, "postgres://"))
	assert.Contains(t, u, "sslmode=require")
	assert.NotContains(t, u, "p@ss/word", "password must be URL-encoded")
}

func TestMarshalJSON_MasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.SigningSecret = "super-secret-signing-key-value"

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	s := string(data)
	assert.NotContains(t, s, "secret-password-value")
	assert.NotContains(t, s, "super-secret-signing-key-value")
	assert.Contains(t, s, maskedValue)
}

func TestApplyDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:pw@db.internal:6432/analytics?sslmode=require")

	cfg := &Config{}
	require.NoError(t, cfg.applyDatabaseURL())

	p, err := cfg.DefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", p.Host)
	assert.Equal(t, 6432, p.Port)
	assert.Equal(t, "app", p.User)
	assert.Equal(t, "pw", p.Password)
	assert.Equal(t, "analytics", p.DBName)
	assert.Equal(t, "require", p.SSLMode)
}

func TestApplyDatabaseURL_BadScheme(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://app:pw@db:3306/x")

	cfg := &Config{}
	assert.Error(t, cfg.applyDatabaseURL())
}

func TestFullModelName(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "googleai/gemini-2.5-flash", cfg.FullModelName("gemini-2.5-flash"))
	assert.Equal(t, "ollama/llama3.3", cfg.FullModelName("ollama/llama3.3"))
}

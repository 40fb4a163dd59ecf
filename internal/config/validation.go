package config

import (
	"fmt"
	"strings"
)

// validSSLModes are the libpq sslmode values accepted in profiles.
var validSSLModes = map[string]struct{}{
	"disable":     {},
	"allow":       {},
	"prefer":      {},
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// Validate checks the configuration for structural errors.
// Called by Load (fail-fast); individual checks use sentinel errors so
// callers can branch with errors.Is.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model_name is empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidModelName)
	}

	if c.TopK < 1 || c.TopK > MaxTopK {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidTopK, MaxTopK, c.TopK)
	}
	if c.LinkTTLSeconds <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidLinkTTL, c.LinkTTLSeconds)
	}

	for name, p := range c.Connections {
		if err := p.validate(); err != nil {
			return fmt.Errorf("connection profile %q: %w", name, err)
		}
	}

	return nil
}

// ValidateServe checks requirements that only apply to the HTTP server,
// on top of Validate. Signed document links need a non-trivial secret.
func (c *Config) ValidateServe() error {
	if c.SigningSecret == "" {
		return fmt.Errorf("%w: set FINBOARD_SIGNING_SECRET", ErrMissingSigningSecret)
	}
	if len(c.SigningSecret) < 32 {
		return fmt.Errorf("%w: must be at least 32 bytes, got %d", ErrMissingSigningSecret, len(c.SigningSecret))
	}
	return nil
}

func (p ConnectionProfile) validate() error {
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, p.Port)
	}
	if p.SSLMode != "" {
		if _, ok := validSSLModes[p.SSLMode]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidSSLMode, p.SSLMode)
		}
	}
	return nil
}

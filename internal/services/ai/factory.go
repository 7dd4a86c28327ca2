// File: internal/services/ai/factory.go
package ai

// NewResponder validates config and builds the configured provider.
func NewResponder(config *Config, logger Logger) (Responder, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	switch config.Provider {
	case ProviderAgent:
		return NewAgentProvider(config, nil, logger), nil
	default:
		return NewOpenAIProvider(config, logger), nil
	}
}

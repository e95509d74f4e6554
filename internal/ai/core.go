package ai

import (
	"leadchat/internal/config"
	"leadchat/internal/database"
)

// buildMessages assembles the prompt message list shared by all backends:
// one system message, each valid history entry in order, and the new user
// message last. History entries with a role other than user/assistant or
// with empty role/content are dropped without error; lenient handling of
// malformed widget history is a deliberate policy, not a bug.
func buildMessages(systemPrompt string, history []Turn, userMessage string) []promptMessage {
	messages := make([]promptMessage, 0, len(history)+2)
	messages = append(messages, promptMessage{
		Role:    database.RoleSystem,
		Content: systemPrompt,
	})

	for _, turn := range history {
		if turn.Role == "" || turn.Content == "" {
			continue
		}
		if turn.Role != database.RoleUser && turn.Role != database.RoleAssistant {
			continue
		}
		messages = append(messages, promptMessage{Role: turn.Role, Content: turn.Content})
	}

	messages = append(messages, promptMessage{
		Role:    database.RoleUser,
		Content: userMessage,
	})

	return messages
}

// resolveOptions applies the configured defaults to any option the caller
// left unset.
func resolveOptions(cfg config.AIConfig, req Request) (model string, maxTokens int, temperature float32) {
	model = req.Model
	if model == "" {
		model = cfg.Model
	}

	maxTokens = req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}

	temperature = cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	return model, maxTokens, temperature
}

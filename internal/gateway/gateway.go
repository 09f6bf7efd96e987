package gateway

import "context"

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Engine turns an ask into a reply. The runner service implements it.
type Engine interface {
	RunAsk(ctx context.Context, ask string) (string, error)
}

package chat

import "context"

const DefaultMaxTokens = 1000

// Message is one conversational turn sent to a provider. ImageData, when
// set, is attached to the turn as an inline image part.
type Message struct {
	Role      string
	Text      string
	ImageData []byte
	ImageMIME string
}

type Request struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Client is implemented by each upstream chat provider.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}

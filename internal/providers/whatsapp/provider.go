package whatsapp

import "context"

// Provider sends one WhatsApp text message and returns the platform's
// message id.
type Provider interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, phone, message string) (string, error) {
	return "", nil
}

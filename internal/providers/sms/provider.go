package sms

import "context"

// Provider sends one SMS and returns the gateway's message id.
type Provider interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, phone, message string) (string, error) {
	return "", nil
}

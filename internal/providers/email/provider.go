package email

import "context"

// Provider sends one email and returns the provider's message id when it
// has one; SMTP has none and returns "".
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) (string, error) {
	return "", nil
}

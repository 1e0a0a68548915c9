package push

import "context"

// Provider delivers one push notification to a device token.
type Provider interface {
	Send(ctx context.Context, deviceToken, title, body string) (string, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, deviceToken, title, body string) (string, error) {
	return "", nil
}

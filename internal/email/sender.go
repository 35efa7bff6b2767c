package email

import "context"

// Sender is responsible for actually delivering a message.
type Sender interface {
	Send(ctx context.Context, sender, recipient Address, subject, body string) error
}

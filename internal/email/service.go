package email

import (
	"context"
	"fmt"

	"github.com/LSkevi/PieTracker/internal/krypto"
)

// Service sends the transactional messages PieTracker needs. It's the
// out-of-band channel for password reset tokens.
type Service struct {
	sender Sender
	from   Address
}

func NewService(sender Sender, from Address) *Service {
	return &Service{
		sender: sender,
		from:   from,
	}
}

// SendPasswordReset delivers a password reset token to the recipient.
// The token is only ever exposed here, inside the message body.
func (s *Service) SendPasswordReset(ctx context.Context, recipient Address, token krypto.Token) error {
	const subject = "Reset your PieTracker password"

	body := fmt.Sprintf(
		"Someone requested a password reset for the PieTracker account linked to this address.\n\n"+
			"Your reset token is:\n\n%s\n\n"+
			"It is valid for 15 minutes and can be used once. If you did not request "+
			"a reset you can ignore this message.\n",
		token.String(),
	)

	err := s.sender.Send(ctx, s.from, recipient, subject, body)
	if err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}

	return nil
}

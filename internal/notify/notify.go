package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rifasolidaria/rifa/internal/kafka"
)

// Sender turns purchase events into admin notifications. Payment
// confirmation is manual, so the admin reviews each submitted proof by
// hand; this is the channel that tells them there is something to review.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	numbers := make([]string, 0, len(event.Numbers))
	for _, n := range event.Numbers {
		numbers = append(numbers, fmt.Sprintf("%03d", n))
	}
	fmt.Printf("notify admin: %s buyer=%s phone=%s numbers=%s proof=%s\n",
		event.Type, event.BuyerName, event.BuyerPhone, strings.Join(numbers, ","), event.ProofURL)
	return nil
}

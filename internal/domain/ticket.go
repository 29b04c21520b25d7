package domain

import "time"

type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusReserved  TicketStatus = "reserved"
	TicketStatusPaid      TicketStatus = "paid"
)

type Ticket struct {
	Number           int          `json:"number"`
	Status           TicketStatus `json:"status"`
	BuyerName        string       `json:"buyer_name,omitempty"`
	BuyerPhone       string       `json:"buyer_phone,omitempty"`
	BuyerInstagram   string       `json:"buyer_instagram,omitempty"`
	ReservationToken string       `json:"reservation_token,omitempty"`
	ReservedAt       *time.Time   `json:"reserved_at,omitempty"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
	ProofURL         string       `json:"proof_url,omitempty"`
	CreatedAt        time.Time    `json:"created_at,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at,omitempty"`
}

type Buyer struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
}

// DeriveStatus maps legacy rows, where status was implied by which buyer
// fields were filled in, onto the explicit status enum: a proof reference
// means paid, a buyer name without proof means reserved, anything else is
// available.
func DeriveStatus(buyerName, proofURL string) TicketStatus {
	switch {
	case proofURL != "":
		return TicketStatusPaid
	case buyerName != "":
		return TicketStatusReserved
	default:
		return TicketStatusAvailable
	}
}

// ValidTransition reports whether a ticket may move from one status to
// another. Allowed edges: available→reserved, reserved→paid and
// reserved→available (expiry sweep).
func ValidTransition(from, to TicketStatus) bool {
	switch from {
	case TicketStatusAvailable:
		return to == TicketStatusReserved
	case TicketStatusReserved:
		return to == TicketStatusPaid || to == TicketStatusAvailable
	default:
		return false
	}
}

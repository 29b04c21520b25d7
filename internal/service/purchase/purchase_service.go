package purchase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rifasolidaria/rifa/internal/domain"
	"github.com/rifasolidaria/rifa/internal/kafka"
	"github.com/rifasolidaria/rifa/internal/repository"
)

type PurchaseUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*Reservation, error)
	SubmitProof(ctx context.Context, token string, proof ProofInput) (string, error)
	ExpireStaleReservations(ctx context.Context) ([]domain.Ticket, error)
}

type Cache interface {
	AcquireNumberLock(ctx context.Context, number int, ttl time.Duration) (bool, error)
	ReleaseNumberLock(ctx context.Context, number int) error
	InvalidateTickets(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ProofStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType, phone, ext string) (string, error)
}

var (
	ErrNameTooShort        = errors.New("name must have at least 3 characters")
	ErrPhoneTooShort       = errors.New("phone must have at least 10 digits")
	ErrNoNumbersSelected   = errors.New("select at least one number")
	ErrNumberOutOfRange    = errors.New("number is outside the raffle range")
	ErrNumberLocked        = errors.New("number is being purchased by someone else")
	ErrProofTooLarge       = errors.New("proof image exceeds the 5MB limit")
	ErrProofBadType        = errors.New("proof must be a JPEG or PNG image")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation is no longer pending payment")
)

const maxProofSize = 5 << 20

var acceptedProofTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

type ReserveInput struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	Numbers   []int  `json:"numbers"`
}

type ProofInput struct {
	File        io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// Reservation is the outcome of the first saga step. Token is the
// idempotency key shared by every reserved row; the second step (proof
// upload) and any retry of it are addressed by this token.
type Reservation struct {
	Token      string       `json:"token"`
	Numbers    []int        `json:"numbers"`
	Buyer      domain.Buyer `json:"buyer"`
	TotalCents int64        `json:"total_cents"`
	ExpiresAt  time.Time    `json:"expires_at"`
}

type PurchaseService struct {
	tickets            repository.TicketRepository
	cache              Cache
	producer           Producer
	proofs             ProofStore
	purchaseTopic      string
	notificationsTopic string
	totalNumbers       int
	priceCents         int64
	holdTTL            time.Duration
}

type PurchaseServiceOption func(*PurchaseService)

func WithNotificationsTopic(topic string) PurchaseServiceOption {
	return func(s *PurchaseService) {
		s.notificationsTopic = topic
	}
}

func NewPurchaseService(
	tickets repository.TicketRepository,
	cache Cache,
	producer Producer,
	proofs ProofStore,
	purchaseTopic string,
	totalNumbers int,
	priceCents int64,
	holdTTL time.Duration,
	opts ...PurchaseServiceOption,
) *PurchaseService {
	service := &PurchaseService{
		tickets:       tickets,
		cache:         cache,
		producer:      producer,
		proofs:        proofs,
		purchaseTopic: purchaseTopic,
		totalNumbers:  totalNumbers,
		priceCents:    priceCents,
		holdTTL:       holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve validates the buyer submission and moves the whole selection
// from available to reserved in one transaction. Any number already taken
// rejects the submission outright and leaves nothing reserved.
func (s *PurchaseService) Reserve(ctx context.Context, input ReserveInput) (*Reservation, error) {
	buyer := domain.Buyer{
		Name:      strings.TrimSpace(input.Name),
		Phone:     domain.NormalizePhone(input.Phone),
		Instagram: domain.NormalizeInstagram(input.Instagram),
	}

	if len([]rune(buyer.Name)) < 3 {
		return nil, ErrNameTooShort
	}
	if len(buyer.Phone) < 10 {
		return nil, ErrPhoneTooShort
	}

	selection := domain.NewSelection(input.Numbers...)
	if selection.Len() == 0 {
		return nil, ErrNoNumbersSelected
	}
	numbers := selection.Sorted()
	for _, n := range numbers {
		if n < 1 || n > s.totalNumbers {
			return nil, fmt.Errorf("%w: %d", ErrNumberOutOfRange, n)
		}
	}

	locked := make([]int, 0, len(numbers))
	releaseLocks := func() {
		for _, n := range locked {
			_ = s.cache.ReleaseNumberLock(ctx, n)
		}
	}
	if s.cache != nil {
		for _, n := range numbers {
			ok, err := s.cache.AcquireNumberLock(ctx, n, s.holdTTL)
			if err != nil {
				releaseLocks()
				return nil, err
			}
			if !ok {
				releaseLocks()
				return nil, fmt.Errorf("%w: %d", ErrNumberLocked, n)
			}
			locked = append(locked, n)
		}
	}

	now := time.Now()
	reservation := &Reservation{
		Token:      uuid.NewString(),
		Numbers:    numbers,
		Buyer:      buyer,
		TotalCents: int64(len(numbers)) * s.priceCents,
		ExpiresAt:  now.Add(s.holdTTL),
	}

	if err := s.tickets.Reserve(ctx, numbers, buyer, reservation.Token, now, reservation.ExpiresAt); err != nil {
		releaseLocks()
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTickets(ctx)
	}
	s.publish(ctx, kafka.TicketEvent{
		Type:           "numbers_reserved",
		Token:          reservation.Token,
		Numbers:        numbers,
		BuyerName:      buyer.Name,
		BuyerPhone:     buyer.Phone,
		BuyerInstagram: buyer.Instagram,
		Status:         string(domain.TicketStatusReserved),
		TotalCents:     reservation.TotalCents,
		ExpiresAt:      reservation.ExpiresAt,
	})

	return reservation, nil
}

// SubmitProof uploads the payment image and flips every row of the
// reservation from reserved to paid. Retrying with the same token after an
// already-confirmed submission returns the stored proof URL instead of
// uploading again.
func (s *PurchaseService) SubmitProof(ctx context.Context, token string, proof ProofInput) (string, error) {
	if proof.Size > maxProofSize {
		return "", ErrProofTooLarge
	}
	ext, ok := acceptedProofTypes[proof.ContentType]
	if !ok {
		return "", ErrProofBadType
	}
	if e := filepath.Ext(proof.Filename); e != "" {
		ext = strings.ToLower(e)
	}

	rows, err := s.tickets.ListByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", ErrReservationNotFound
	}
	if allPaid(rows) {
		return rows[0].ProofURL, nil
	}

	proofURL, err := s.proofs.Upload(ctx, proof.File, proof.Size, proof.ContentType, rows[0].BuyerPhone, ext)
	if err != nil {
		return "", err
	}

	// The upload is durable at this point. A failure below leaves the
	// object in the bucket and the rows reserved; the same token retries
	// the update without re-reserving anything.
	confirmed, err := s.tickets.MarkPaid(ctx, token, proofURL)
	if err != nil {
		return "", err
	}
	if confirmed == 0 {
		return "", ErrReservationExpired
	}

	numbers := make([]int, 0, len(rows))
	for _, t := range rows {
		numbers = append(numbers, t.Number)
	}
	if s.cache != nil {
		for _, n := range numbers {
			_ = s.cache.ReleaseNumberLock(ctx, n)
		}
		_ = s.cache.InvalidateTickets(ctx)
	}
	s.publish(ctx, kafka.TicketEvent{
		Type:           "payment_submitted",
		Token:          token,
		Numbers:        numbers,
		BuyerName:      rows[0].BuyerName,
		BuyerPhone:     rows[0].BuyerPhone,
		BuyerInstagram: rows[0].BuyerInstagram,
		Status:         string(domain.TicketStatusPaid),
		ProofURL:       proofURL,
	})

	return proofURL, nil
}

// ExpireStaleReservations returns reserved numbers whose hold lapsed
// without a payment proof back to available. Run periodically by the
// worker; this is the reconciliation pass for abandoned submissions.
func (s *PurchaseService) ExpireStaleReservations(ctx context.Context) ([]domain.Ticket, error) {
	expired, err := s.tickets.ExpireReservedBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return expired, nil
	}

	byToken := make(map[string]*kafka.TicketEvent)
	for _, t := range expired {
		if s.cache != nil {
			_ = s.cache.ReleaseNumberLock(ctx, t.Number)
		}
		ev, ok := byToken[t.ReservationToken]
		if !ok {
			ev = &kafka.TicketEvent{
				Type:       "reservation_expired",
				Token:      t.ReservationToken,
				BuyerName:  t.BuyerName,
				BuyerPhone: t.BuyerPhone,
				Status:     string(domain.TicketStatusAvailable),
			}
			byToken[t.ReservationToken] = ev
		}
		ev.Numbers = append(ev.Numbers, t.Number)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateTickets(ctx)
	}
	for _, ev := range byToken {
		s.publish(ctx, *ev)
	}

	return expired, nil
}

func (s *PurchaseService) publish(ctx context.Context, event kafka.TicketEvent) {
	if s.producer == nil || s.purchaseTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.purchaseTopic, event.Token, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for reservation %s: %v", event.Type, event.Token, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Token, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for reservation %s: %v", event.Type, event.Token, err)
		}
	}
}

func allPaid(tickets []domain.Ticket) bool {
	for _, t := range tickets {
		if t.Status != domain.TicketStatusPaid {
			return false
		}
	}
	return true
}

var _ PurchaseUseCase = (*PurchaseService)(nil)

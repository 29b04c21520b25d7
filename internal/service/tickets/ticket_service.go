package tickets

import (
	"context"
	"errors"

	"github.com/rifasolidaria/rifa/internal/domain"
	"github.com/rifasolidaria/rifa/internal/repository"
)

type TicketUseCase interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	GridPage(ctx context.Context, page int) (*GridPage, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Ticket, error)
}

type Cache interface {
	GetTickets(ctx context.Context) ([]domain.Ticket, error)
	SetTickets(ctx context.Context, tickets []domain.Ticket) error
}

var ErrInvalidPhone = errors.New("phone must have at least 10 digits")

// GridPage is one fixed-size slice of the number grid, the unit the
// selector UI renders.
type GridPage struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	PerPage    int             `json:"per_page"`
	Tickets    []domain.Ticket `json:"tickets"`
}

type TicketService struct {
	repo         repository.TicketRepository
	cache        Cache
	totalNumbers int
	perPage      int
}

func NewTicketService(repo repository.TicketRepository, cache Cache, totalNumbers, perPage int) *TicketService {
	return &TicketService{repo: repo, cache: cache, totalNumbers: totalNumbers, perPage: perPage}
}

// List returns the full grid in number order. Rows materialize in storage
// only once reserved, so numbers without a row are seeded as available
// before the grid is cached.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTickets(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int]domain.Ticket, len(rows))
	for _, t := range rows {
		byNumber[t.Number] = t
	}

	grid := make([]domain.Ticket, 0, s.totalNumbers)
	for n := 1; n <= s.totalNumbers; n++ {
		if t, ok := byNumber[n]; ok {
			grid = append(grid, t)
			continue
		}
		grid = append(grid, domain.Ticket{Number: n, Status: domain.TicketStatusAvailable})
	}

	if s.cache != nil {
		_ = s.cache.SetTickets(ctx, grid)
	}
	return grid, nil
}

// GridPage slices the grid into fixed-size pages. Pages outside the valid
// range are clamped rather than rejected.
func (s *TicketService) GridPage(ctx context.Context, page int) (*GridPage, error) {
	grid, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (s.totalNumbers + s.perPage - 1) / s.perPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * s.perPage
	end := min(start+s.perPage, len(grid))

	return &GridPage{
		Page:       page,
		TotalPages: totalPages,
		PerPage:    s.perPage,
		Tickets:    grid[start:end],
	}, nil
}

// ListByPhone looks up the tickets bought with a phone number. The input
// is normalized to digits first; an empty result is a valid answer, not
// an error.
func (s *TicketService) ListByPhone(ctx context.Context, phone string) ([]domain.Ticket, error) {
	normalized := domain.NormalizePhone(phone)
	if len(normalized) < 10 {
		return nil, ErrInvalidPhone
	}
	return s.repo.ListByPhone(ctx, normalized)
}

var _ TicketUseCase = (*TicketService)(nil)

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-booking/internal/domain"
)

// The memory repositories back local development when POSTGRES_DSN is not
// set, and the tests. They keep the same contract as the Postgres ones:
// store-assigned ids, newest-first listings with insertion order breaking
// timestamp ties, and pgx.ErrNoRows on a miss.

type memoryUserRecord struct {
	user domain.User
	seq  int64
}

// MemoryUserRepository is a mutex-guarded in-process UserRepository.
type MemoryUserRepository struct {
	mu      sync.Mutex
	records []memoryUserRecord
	nextSeq int64
}

// NewMemoryUserRepository constructs an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) UpsertByMobile(_ context.Context, draft UserDraft) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.latestByMobileLocked(draft.MobileNumber); idx >= 0 {
		user := &r.records[idx].user
		applyDraft(user, draft)
		user.UpdatedAt = time.Now()
		return cloneUser(user), nil
	}

	now := time.Now()
	user := domain.User{
		ID:           uuid.NewString(),
		MobileNumber: draft.MobileNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyDraft(&user, draft)
	r.nextSeq++
	r.records = append(r.records, memoryUserRecord{user: user, seq: r.nextSeq})
	return cloneUser(&user), nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].user.ID == user.ID {
			updated := *user
			updated.CreatedAt = r.records[i].user.CreatedAt
			updated.UpdatedAt = time.Now()
			r.records[i].user = updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].user.ID == id {
			return cloneUser(&r.records[i].user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) FindLatestByMobile(_ context.Context, mobile int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.latestByMobileLocked(mobile); idx >= 0 {
		return cloneUser(&r.records[idx].user), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := make([]memoryUserRecord, len(r.records))
	copy(sorted, r.records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].user.CreatedAt.Equal(sorted[j].user.CreatedAt) {
			return sorted[i].user.CreatedAt.After(sorted[j].user.CreatedAt)
		}
		return sorted[i].seq > sorted[j].seq
	})

	result := make([]domain.User, 0, len(sorted))
	for i := range sorted {
		result = append(result, sorted[i].user)
	}
	return result, nil
}

func (r *MemoryUserRepository) latestByMobileLocked(mobile int64) int {
	best := -1
	for i := range r.records {
		if r.records[i].user.MobileNumber != mobile {
			continue
		}
		if best < 0 || newerUser(&r.records[i], &r.records[best]) {
			best = i
		}
	}
	return best
}

func newerUser(a, b *memoryUserRecord) bool {
	if !a.user.CreatedAt.Equal(b.user.CreatedAt) {
		return a.user.CreatedAt.After(b.user.CreatedAt)
	}
	return a.seq > b.seq
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	return &clone
}

type memoryTicketRecord struct {
	ticket domain.Ticket
	seq    int64
}

// MemoryTicketRepository is a mutex-guarded in-process TicketRepository.
type MemoryTicketRepository struct {
	mu      sync.Mutex
	records []memoryTicketRecord
	nextSeq int64
}

// NewMemoryTicketRepository constructs an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{}
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.nextSeq++
	r.records = append(r.records, memoryTicketRecord{ticket: *ticket, seq: r.nextSeq})
	return nil
}

func (r *MemoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ticket.ID == ticket.ID {
			updated := *ticket
			updated.CreatedAt = r.records[i].ticket.CreatedAt
			updated.UpdatedAt = time.Now()
			r.records[i].ticket = updated
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ticket.ID == id {
			clone := r.records[i].ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryTicketRepository) ListByCustomer(_ context.Context, customerID string) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matching := make([]memoryTicketRecord, 0)
	for i := range r.records {
		if r.records[i].ticket.CustomerID == customerID {
			matching = append(matching, r.records[i])
		}
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].ticket.CreatedAt.Equal(matching[j].ticket.CreatedAt) {
			return matching[i].ticket.CreatedAt.After(matching[j].ticket.CreatedAt)
		}
		return matching[i].seq > matching[j].seq
	})

	result := make([]domain.Ticket, 0, len(matching))
	for i := range matching {
		result = append(result, matching[i].ticket)
	}
	return result, nil
}

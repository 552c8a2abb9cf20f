package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transit-booking/internal/domain"
)

func draft(mobile int64, name string) UserDraft {
	d := UserDraft{MobileNumber: mobile, Status: domain.UserStatusUnverified, OTPHash: "hash"}
	if name != "" {
		d.Name = &name
	}
	return d
}

func TestMemoryUpsertCreatesThenUpdates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.UpsertByMobile(ctx, draft(5551234, "asha"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("store must assign id and timestamp: %+v", created)
	}

	updated, err := repo.UpsertByMobile(ctx, draft(5551234, "binod"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("upsert forked a second record")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created timestamp must never mutate")
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 || all[0].Name != "binod" {
		t.Fatalf("want one updated record, got %+v", all)
	}
}

func TestMemoryUpsertIsRaceFree(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.UpsertByMobile(ctx, draft(5551234, "asha"))
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("concurrent upserts must not fork: got %d records", len(all))
	}
}

func TestMemoryFindLatestByMobile(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.FindLatestByMobile(ctx, 404); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows on miss, got %v", err)
	}

	if _, err := repo.UpsertByMobile(ctx, draft(42, "asha")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	found, err := repo.FindLatestByMobile(ctx, 42)
	if err != nil {
		t.Fatalf("FindLatestByMobile: %v", err)
	}
	if found.Name != "asha" {
		t.Fatalf("unexpected record: %+v", found)
	}
}

func TestMemoryTicketListOrdersByInsertionOnTies(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		ticket := &domain.Ticket{Reference: "TKT-TEST", CustomerID: "c1", Persons: 1, Valid: true}
		if err := repo.Create(ctx, ticket); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, ticket.ID)
	}

	listed, err := repo.ListByCustomer(ctx, "c1")
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(listed) != 5 {
		t.Fatalf("want 5 tickets, got %d", len(listed))
	}
	// Newest first, with insertion order breaking identical timestamps.
	for i := range listed {
		if listed[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("position %d: want %s, got %s", i, ids[len(ids)-1-i], listed[i].ID)
		}
	}
}

func TestMemoryTicketUpdateMiss(t *testing.T) {
	repo := NewMemoryTicketRepository()
	err := repo.Update(context.Background(), &domain.Ticket{ID: "missing"})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("want pgx.ErrNoRows, got %v", err)
	}
}

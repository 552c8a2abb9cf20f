package repository

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/transit-booking/internal/domain"
)

// UserDraft carries the fields a registration writes. Name and Address are
// pointers so an absent field leaves the stored value untouched on update.
type UserDraft struct {
	MobileNumber int64
	Name         *string
	Address      *string
	Role         *string
	Status       domain.UserStatus
	OTPHash      string
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	// UpsertByMobile creates the user when no record matches the mobile
	// number, otherwise updates the most-recently-created match. An
	// advisory lock on the mobile number serializes concurrent
	// registrations, first-time creates included, so the same number
	// cannot fork into two records.
	UpsertByMobile(ctx context.Context, draft UserDraft) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindLatestByMobile(ctx context.Context, mobile int64) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, mobile_number, name, address, role, status, otp_hash, created_at, updated_at`

// Advisory lock class for registration serialization, keeping these locks in
// their own keyspace.
const registrationLockClass = 7462

// registrationLockKey hashes a mobile number into the advisory lock keyspace.
func registrationLockKey(mobile int64) int32 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(mobile))
	h := fnv.New32a()
	h.Write(buf[:])
	return int32(h.Sum32())
}

func (r *userRepository) UpsertByMobile(ctx context.Context, draft UserDraft) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// FOR UPDATE alone cannot serialize two first-time registrations: with
	// no row to lock, both would take the insert branch. The advisory lock
	// keys on the mobile number and covers the create case too; it releases
	// with the transaction.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1, $2)`,
		registrationLockClass, registrationLockKey(draft.MobileNumber)); err != nil {
		return nil, err
	}

	const lockQuery = `
        SELECT ` + userColumns + `
        FROM users WHERE mobile_number=$1
        ORDER BY created_at DESC, seq DESC
        LIMIT 1
        FOR UPDATE`

	existing, err := scanUserRow(tx.QueryRow(ctx, lockQuery, draft.MobileNumber))
	switch {
	case err == nil:
		applyDraft(existing, draft)
		const update = `
            UPDATE users SET name=$1, address=$2, role=$3, status=$4, otp_hash=$5, updated_at=NOW()
            WHERE id=$6
            RETURNING updated_at`
		if err := tx.QueryRow(ctx, update,
			existing.Name,
			existing.Address,
			existing.Role,
			existing.Status,
			existing.OTPHash,
			existing.ID,
		).Scan(&existing.UpdatedAt); err != nil {
			return nil, err
		}
	case errors.Is(err, pgx.ErrNoRows):
		existing = &domain.User{MobileNumber: draft.MobileNumber}
		applyDraft(existing, draft)
		const insert = `
            INSERT INTO users (mobile_number, name, address, role, status, otp_hash)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insert,
			existing.MobileNumber,
			existing.Name,
			existing.Address,
			existing.Role,
			existing.Status,
			existing.OTPHash,
		).Scan(&existing.ID, &existing.CreatedAt, &existing.UpdatedAt); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return existing, nil
}

func applyDraft(user *domain.User, draft UserDraft) {
	if draft.Name != nil {
		user.Name = *draft.Name
	}
	if draft.Address != nil {
		user.Address = *draft.Address
	}
	if draft.Role != nil {
		user.Role = *draft.Role
	}
	user.Status = draft.Status
	user.OTPHash = draft.OTPHash
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, address=$2, role=$3, status=$4, otp_hash=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Address,
		user.Role,
		user.Status,
		user.OTPHash,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users WHERE id=$1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) FindLatestByMobile(ctx context.Context, mobile int64) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users WHERE mobile_number=$1
        ORDER BY created_at DESC, seq DESC
        LIMIT 1`
	return scanUserRow(r.pool.QueryRow(ctx, query, mobile))
}

func (r *userRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users
        ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func scanUserRow(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.MobileNumber,
		&user.Name,
		&user.Address,
		&user.Role,
		&user.Status,
		&user.OTPHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

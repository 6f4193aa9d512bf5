package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) (*PostgresUserRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresUserRepository{pool: pool}, nil
}

// FindByID returns nil, nil when the user has never been registered.
func (r *PostgresUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT user_id, email, name, avatar, oauth_provider, created_at FROM users WHERE user_id = $1`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(&u.ID, &u.Email, &u.Name, &u.Avatar, &u.OAuthProvider, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) CreateIfMissing(ctx context.Context, user domain.User) (bool, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "CreateIfMissing",
		"user_id":   user.ID,
	})

	query := `INSERT INTO users (user_id, email, name, avatar, oauth_provider)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id) DO NOTHING`
	cmdTag, err := r.pool.Exec(ctx, query, user.ID, user.Email, user.Name, user.Avatar, user.OAuthProvider)
	if err != nil {
		repoLogger.Error("Failed to insert user", err, port.Fields{"query": query})
		return false, fmt.Errorf("failed to insert user: %w", err)
	}

	created := cmdTag.RowsAffected() == 1
	repoLogger.Debug("User registration processed.", port.Fields{"created": created})
	return created, nil
}

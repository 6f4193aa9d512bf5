package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/goncalofm90/foodi3/internal/contextkeys"
	"github.com/goncalofm90/foodi3/internal/core/domain"
	"github.com/goncalofm90/foodi3/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresFavouritesRepository is the remote favourites store on PostgreSQL.
// Every statement is filtered by owner, so one user can never see or delete
// another user's rows.
type PostgresFavouritesRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFavouritesRepository(pool *pgxpool.Pool) (*PostgresFavouritesRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresFavouritesRepository{pool: pool}, nil
}

func (r *PostgresFavouritesRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.FavouriteRecord, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresFavouritesRepository",
		"method":    "ListByOwner",
		"owner_id":  ownerID,
	})

	query := `SELECT record_id, owner_id, item_id, item_kind, item_name, COALESCE(thumbnail_url, ''), created_at
		FROM favourites WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		repoLogger.Error("Failed to query favourites", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query favourites: %w", err)
	}
	defer rows.Close()

	records := make([]domain.FavouriteRecord, 0)
	for rows.Next() {
		var rec domain.FavouriteRecord
		var kind string
		if err := rows.Scan(&rec.RecordID, &rec.OwnerID, &rec.ItemID, &kind, &rec.ItemName, &rec.ThumbnailURL, &rec.CreatedAt); err != nil {
			repoLogger.Error("Failed to scan favourite row", err, nil)
			return nil, fmt.Errorf("failed to scan favourite: %w", err)
		}
		rec.ItemKind = domain.ItemKind(kind)
		if err := rec.Validate(); err != nil {
			repoLogger.Warn("Skipping malformed favourite row.", port.Fields{"record_id": rec.RecordID, "error": err.Error()})
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during favourites iteration", err, nil)
		return nil, fmt.Errorf("error during favourites iteration: %w", err)
	}

	repoLogger.Debug("Favourites listed.", port.Fields{"count": len(records)})
	return records, nil
}

func (r *PostgresFavouritesRepository) Create(ctx context.Context, record domain.FavouriteRecord) (*domain.FavouriteRecord, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresFavouritesRepository",
		"method":    "Create",
		"owner_id":  record.OwnerID,
		"item_id":   record.ItemID,
		"record_id": record.RecordID,
	})

	if err := record.Validate(); err != nil {
		return nil, err
	}

	repoLogger.Debug("Inserting favourite.", nil)
	query := `INSERT INTO favourites (record_id, owner_id, item_id, item_kind, item_name, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')) RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		record.RecordID, record.OwnerID, record.ItemID, string(record.ItemKind), record.ItemName, record.ThumbnailURL,
	).Scan(&record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			repoLogger.Warn("Favourite already exists.", port.Fields{"constraint": pgErr.ConstraintName})
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateRecord, pgErr.ConstraintName)
		}
		repoLogger.Error("Failed to insert favourite", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to insert favourite: %w", err)
	}

	repoLogger.Debug("Favourite inserted.", nil)
	return &record, nil
}

func (r *PostgresFavouritesRepository) Delete(ctx context.Context, ownerID, recordID string) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresFavouritesRepository",
		"method":    "Delete",
		"owner_id":  ownerID,
		"record_id": recordID,
	})

	query := `DELETE FROM favourites WHERE record_id = $1 AND owner_id = $2`
	cmdTag, err := r.pool.Exec(ctx, query, recordID, ownerID)
	if err != nil {
		repoLogger.Error("Failed to delete favourite", err, port.Fields{"query": query})
		return fmt.Errorf("failed to delete favourite: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		repoLogger.Debug("Favourite deleted.", nil)
		return nil
	}

	// Nothing deleted: tell a missing row apart from someone else's row.
	var actualOwner string
	err = r.pool.QueryRow(ctx, `SELECT owner_id FROM favourites WHERE record_id = $1`, recordID).Scan(&actualOwner)
	if errors.Is(err, pgx.ErrNoRows) {
		repoLogger.Warn("Attempted to delete a favourite that does not exist.", nil)
		return domain.ErrRecordNotFound
	}
	if err != nil {
		repoLogger.Error("Failed to check favourite owner", err, nil)
		return fmt.Errorf("failed to check favourite owner: %w", err)
	}
	repoLogger.Warn("Attempted to delete a favourite of another owner.", nil)
	return domain.ErrPermissionDenied
}

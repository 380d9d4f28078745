package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shoukanhq/shoukan-server-go/internal/catalog"
	"github.com/shoukanhq/shoukan-server-go/internal/game/card"
)

// DeckRepository loads a player's active deck as an ordered list of card
// IDs and resolves them against the catalog. It implements the engine's
// DeckSupplier port.
type DeckRepository struct {
	pool *pgxpool.Pool
	cat  *catalog.Catalog
}

// NewDeckRepository creates the deck supplier.
func NewDeckRepository(pool *pgxpool.Pool, cat *catalog.Catalog) *DeckRepository {
	return &DeckRepository{pool: pool, cat: cat}
}

// Deck returns the player's active deck templates in stored order.
func (r *DeckRepository) Deck(ctx context.Context, userID string) ([]card.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT dc.card_id
		FROM deck_cards dc
		JOIN decks d ON d.id = dc.deck_id
		WHERE d.user_id = $1 AND d.active
		ORDER BY dc.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query deck for %s: %w", userID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read deck rows: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("player %s has no active deck", userID)
	}

	return r.cat.Resolve(ids)
}

// Account is a player row used by the gateway for authentication.
type Account struct {
	UserID       string
	Name         string
	PasswordHash string
}

// AccountRepository reads player accounts.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates the account reader.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Find returns an account by user ID.
func (r *AccountRepository) Find(ctx context.Context, userID string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, name, password_hash
		FROM accounts WHERE user_id = $1`, userID).
		Scan(&acc.UserID, &acc.Name, &acc.PasswordHash)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("account %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("query account %s: %w", userID, err)
	}
	return &acc, nil
}

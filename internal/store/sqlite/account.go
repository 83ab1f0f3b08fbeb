package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetAccountDocument returns the body of a user's document of the given kind,
// or nil when the user has none.
func (s *Store) GetAccountDocument(ctx context.Context, userID, kind string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM account_documents WHERE user_id = ? AND kind = ?`,
		userID, kind,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account document %s/%s: %w", userID, kind, err)
	}
	return body, nil
}

// PutAccountDocument replaces a user's document of the given kind.
func (s *Store) PutAccountDocument(ctx context.Context, userID, kind string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_documents (user_id, kind, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, kind) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		userID, kind, body, formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("put account document %s/%s: %w", userID, kind, err)
	}
	return nil
}

// DeleteAccount removes every document of a user.
func (s *Store) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM account_documents WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete account %s: %w", userID, err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocumentInfo describes the last write of an admin document.
type DocumentInfo struct {
	Name      string
	UpdatedAt time.Time
	UpdatedBy string
}

// GetDocument returns the body of the named admin document, or nil when it does not exist.
func (s *Store) GetDocument(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM admin_documents WHERE name = ?`, name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin document %s: %w", name, err)
	}
	return body, nil
}

// PutDocument replaces the named admin document. actor must be on the allow-list.
func (s *Store) PutDocument(ctx context.Context, name string, body []byte, actor string) error {
	if err := s.admins.Check(actor); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_documents (name, body, updated_at, updated_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		name, body, formatTime(s.now()), actor,
	)
	if err != nil {
		return fmt.Errorf("put admin document %s: %w", name, err)
	}

	if s.logger != nil {
		s.logger.Info("admin document updated", "name", name, "actor", actor)
	}
	return nil
}

// ListDocuments returns the write metadata of every admin document, ordered by name.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, updated_at, updated_by FROM admin_documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list admin documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		info, err := scanDocumentInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func scanDocumentInfo(rows *sql.Rows) (DocumentInfo, error) {
	var (
		info      DocumentInfo
		updatedAt string
	)
	if err := rows.Scan(&info.Name, &updatedAt, &info.UpdatedBy); err != nil {
		return info, fmt.Errorf("scan admin document: %w", err)
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return info, fmt.Errorf("parse updated_at of %s: %w", info.Name, err)
	}
	info.UpdatedAt = t
	return info, nil
}

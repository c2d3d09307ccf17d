package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/team-roster/pkg/docstore"
)

// Get retrieves a document body by collection and ID.
func (db *DB) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := db.pool.QueryRow(ctx, `
		SELECT data FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query document %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// Set writes the full document body, overwriting any existing version.
func (db *DB) Set(ctx context.Context, collection, id string, data []byte) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (db *DB) Delete(ctx context.Context, collection, id string) error {
	_, err := db.pool.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// List returns all document bodies in a collection keyed by ID.
func (db *DB) List(ctx context.Context, collection string) (map[string][]byte, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, data FROM documents WHERE collection = $1
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make(map[string][]byte)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs[id] = data
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection %s: %w", collection, err)
	}

	return docs, nil
}

// ApplyBatch applies all operations in a single transaction.
func (db *DB) ApplyBatch(ctx context.Context, ops []docstore.Op) error {
	if len(ops) > docstore.MaxBatchOps {
		return docstore.ErrBatchTooLarge
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range ops {
		switch op.Kind {
		case docstore.OpSet:
			_, err = tx.Exec(ctx, `
				INSERT INTO documents (collection, id, data)
				VALUES ($1, $2, $3)
				ON CONFLICT (collection, id)
				DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
			`, op.Collection, op.ID, op.Data)
		case docstore.OpDelete:
			_, err = tx.Exec(ctx, `
				DELETE FROM documents WHERE collection = $1 AND id = $2
			`, op.Collection, op.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to apply batch op on %s/%s: %w", op.Collection, op.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

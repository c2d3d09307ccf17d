package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jakechorley/team-roster/pkg/core/model"
	"github.com/jakechorley/team-roster/pkg/docstore"
)

// GetUser fetches a user by auth UID.
func (d *DB) GetUser(ctx context.Context, uid string) (*model.AppUser, error) {
	data, err := d.store.Get(ctx, CollectionUsers, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}

	var user model.AppUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", uid, err)
	}
	return &user, nil
}

// FindUserByEmail resolves a user by the mirrored email identifier, which
// is what roster assignments key on.
func (d *DB) FindUserByEmail(ctx context.Context, email string) (*model.AppUser, error) {
	users, err := d.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
}

// ListUsers fetches all users keyed by auth UID.
func (d *DB) ListUsers(ctx context.Context) (map[string]*model.AppUser, error) {
	docs, err := d.store.List(ctx, CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make(map[string]*model.AppUser, len(docs))
	for uid, data := range docs {
		var user model.AppUser
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", uid, err)
		}
		users[uid] = &user
	}
	return users, nil
}

// SaveUser overwrites the user document for a UID.
func (d *DB) SaveUser(ctx context.Context, uid string, user *model.AppUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", uid, err)
	}
	if err := d.store.Set(ctx, CollectionUsers, uid, data); err != nil {
		return fmt.Errorf("failed to save user %s: %w", uid, err)
	}
	return nil
}

// SaveUsers writes multiple user documents in capped batches, used for
// bulk field updates.
func (d *DB) SaveUsers(ctx context.Context, users map[string]*model.AppUser) error {
	ops := make([]docstore.Op, 0, len(users))
	for uid, user := range users {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user %s: %w", uid, err)
		}
		ops = append(ops, docstore.Op{
			Kind:       docstore.OpSet,
			Collection: CollectionUsers,
			ID:         uid,
			Data:       data,
		})
	}

	for start := 0; start < len(ops); start += docstore.MaxBatchOps {
		end := min(start+docstore.MaxBatchOps, len(ops))
		if err := d.store.ApplyBatch(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("failed to apply user batch: %w", err)
		}
	}
	return nil
}

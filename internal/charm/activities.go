// ABOUTME: Activity history operations using Charm KV
// ABOUTME: Entries are append-only JSON documents under activity:<uuid> keys

package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/charm/kv"
	"github.com/google/uuid"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
)

func activityKey(id uuid.UUID) []byte {
	return []byte(ActivityPrefix + id.String())
}

// CreateActivity appends an entry to the history.
func (c *Client) CreateActivity(entry *models.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	return c.do(func(k *kv.KV) error {
		return k.Set(activityKey(entry.ID), data)
	})
}

// GetActivity retrieves an entry by its UUID.
func (c *Client) GetActivity(id uuid.UUID) (*models.ActivityEntry, error) {
	data, err := c.get(activityKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrMissingKey) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}

	var entry models.ActivityEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	return &entry, nil
}

// ListActivities returns a user's history, newest first.
func (c *Client) ListActivities(userID string) ([]*models.ActivityEntry, error) {
	all, err := c.ListAllActivities()
	if err != nil {
		return nil, err
	}
	entries := []*models.ActivityEntry{}
	for _, e := range all {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ListAllActivities returns every entry, newest first.
func (c *Client) ListAllActivities() ([]*models.ActivityEntry, error) {
	entries := []*models.ActivityEntry{}
	prefix := []byte(ActivityPrefix)

	err := c.doReadOnly(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return fmt.Errorf("list keys: %w", err)
		}

		for _, key := range keys {
			if !bytes.HasPrefix(key, prefix) {
				continue
			}

			data, err := k.Get(key)
			if err != nil {
				return fmt.Errorf("get activity %s: %w", key, err)
			}

			var entry models.ActivityEntry
			if err := json.Unmarshal(data, &entry); err != nil {
				return fmt.Errorf("unmarshal activity: %w", err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordedAt.After(entries[j].RecordedAt)
	})
	return entries, nil
}

// DeleteActivity removes an entry.
func (c *Client) DeleteActivity(id uuid.UUID) error {
	return c.do(func(k *kv.KV) error {
		if _, err := k.Get(activityKey(id)); err != nil {
			if errors.Is(err, kv.ErrMissingKey) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("get activity: %w", err)
		}
		return k.Delete(activityKey(id))
	})
}

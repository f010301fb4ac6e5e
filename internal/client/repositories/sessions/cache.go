// Package sessions persists the identity service's session in the local
// key-value store, the way a mobile client keeps it in platform storage.
//
// With a passphrase the session JSON is sealed with AES-GCM under an
// argon2id key; the salt and nonce live next to the ciphertext. Without one
// the JSON is stored as is.
package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
	"github.com/KMDPriyashan/tripzy/internal/client/repositories/metadata"
	"github.com/KMDPriyashan/tripzy/internal/common"
	"github.com/KMDPriyashan/tripzy/internal/cryptox"
	"github.com/KMDPriyashan/tripzy/internal/dbx"
)

const (
	keyPrefix = "auth."
	keyData   = "auth.session"
	keyNonce  = "auth.session.nonce"
	keySalt   = "auth.session.salt"
	keySealed = "auth.session.sealed"
)

// Cache implements client.SessionStorage on a SQLite database.
type Cache struct {
	db         *sql.DB
	passphrase []byte
}

// NewCache returns a cache bound to db. An empty passphrase stores the
// session unencrypted.
func NewCache(db *sql.DB, passphrase string) *Cache {
	c := &Cache{db: db}
	if passphrase != "" {
		c.passphrase = []byte(passphrase)
	}
	return c
}

func (c *Cache) repo(tx dbx.DBTX) metadata.Repository {
	if tx == nil {
		return metadata.NewSQLiteRepository(c.db)
	}
	return metadata.NewSQLiteRepository(tx)
}

// Load returns the stored session, or (nil, nil) when nothing is stored.
// A sealed session with no configured passphrase yields common.ErrCacheLocked.
func (c *Cache) Load(ctx context.Context) (*models.Session, error) {
	repo := c.repo(nil)

	data, err := repo.Get(ctx, keyData)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	sealed, err := repo.Get(ctx, keySealed)
	if err != nil {
		return nil, err
	}

	var s models.Session
	if string(sealed) != "1" {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		return &s, nil
	}

	if c.passphrase == nil {
		return nil, common.ErrCacheLocked
	}

	salt, err := repo.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	nonce, err := repo.Get(ctx, keyNonce)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(c.passphrase, salt)
	defer common.WipeByteArray(key)

	if err := cryptox.OpenJSON(data, nonce, key, &s); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &s, nil
}

// Save replaces the stored session in a single transaction.
func (c *Cache) Save(ctx context.Context, s *models.Session) error {
	if s == nil {
		return c.Clear(ctx)
	}

	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := c.repo(tx)
		if err := repo.DeletePrefix(ctx, keyPrefix); err != nil {
			return err
		}

		if c.passphrase == nil {
			data, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
			return repo.Set(ctx, keyData, data)
		}

		salt := cryptox.NewSalt()
		key := cryptox.DeriveKey(c.passphrase, salt)
		defer common.WipeByteArray(key)

		ciphertext, nonce, err := cryptox.SealJSON(s, key)
		if err != nil {
			return fmt.Errorf("seal session: %w", err)
		}

		for k, v := range map[string][]byte{
			keyData:   ciphertext,
			keyNonce:  nonce,
			keySalt:   salt,
			keySealed: []byte("1"),
		} {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes the stored session and its sealing material.
func (c *Cache) Clear(ctx context.Context) error {
	return c.repo(nil).DeletePrefix(ctx, keyPrefix)
}

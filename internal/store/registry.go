// Package store はValkeyベースのセッションレジストリを提供する。
// 稼働中セッションの実体（ダイアログハンドル含む）はインメモリにあり、
// レジストリは監視・外部掃除ジョブ向けのライフサイクルレコードのみ持つ。
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/oyaguma3/fints-tan-bridge/internal/config"
	"github.com/oyaguma3/fints-tan-bridge/pkg/apperr"
	"github.com/redis/go-redis/v9"
)

// セッションレジストリの状態値
const (
	StateActive     = "active"
	StateTanPending = "tan_pending"
)

// SessionRecord はレジストリに保存するセッションレコード。
type SessionRecord struct {
	BankID         string `redis:"bank_id"`
	UserID         string `redis:"user_id"` // マスキング済みで保存する
	State          string `redis:"state"`
	PendingKind    string `redis:"pending_kind"`
	PendingAccount string `redis:"pending_account"`
	TanReference   string `redis:"tan_reference"`
	CreatedAt      int64  `redis:"created_at"`
	UpdatedAt      int64  `redis:"updated_at"`
}

// Registry はセッションライフサイクルレコードの操作を定義する。
type Registry interface {
	Put(ctx context.Context, sessionID string, rec *SessionRecord) error
	Update(ctx context.Context, sessionID string, updates map[string]any) error
	Get(ctx context.Context, sessionID string) (*SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}

// registry はRegistryのValkey実装。
type registry struct {
	client *redis.Client
}

// NewRegistry は新しいRegistryを生成する。
func NewRegistry(client *redis.Client) Registry {
	return &registry{client: client}
}

// Put はセッションレコードを保存し、TTLを設定する。
func (r *registry) Put(ctx context.Context, sessionID string, rec *SessionRecord) error {
	key := KeyPrefixSession + sessionID
	m := StructToMap(rec)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, m)
	pipe.Expire(ctx, key, config.SessionRegistryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValkeyConnection, err)
	}
	return nil
}

// Update はレコードを部分更新し、TTLをリフレッシュする。
func (r *registry) Update(ctx context.Context, sessionID string, updates map[string]any) error {
	key := KeyPrefixSession + sessionID

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValkeyConnection, err)
	}
	if exists == 0 {
		return apperr.ErrSessionNotFound
	}

	updates["updated_at"] = time.Now().Unix()

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, updates)
	pipe.Expire(ctx, key, config.SessionRegistryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValkeyConnection, err)
	}
	return nil
}

// Get はセッションレコードを取得する。
func (r *registry) Get(ctx context.Context, sessionID string) (*SessionRecord, error) {
	key := KeyPrefixSession + sessionID
	m, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValkeyConnection, err)
	}
	if len(m) == 0 {
		return nil, apperr.ErrSessionNotFound
	}

	var rec SessionRecord
	if err := MapToStruct(m, &rec); err != nil {
		return nil, fmt.Errorf("session record deserialization error: %w", err)
	}
	return &rec, nil
}

// Delete はセッションレコードを削除する。存在しなくてもエラーにしない。
func (r *registry) Delete(ctx context.Context, sessionID string) error {
	key := KeyPrefixSession + sessionID
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValkeyConnection, err)
	}
	return nil
}

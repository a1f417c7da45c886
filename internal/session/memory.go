package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// memoryStore はStoreのインメモリ実装。
// ダイアログハンドルはプロセス外へ直列化できないため、稼働中セッションは
// 常にインメモリで保持する。監視用の永続レコードはinternal/storeが担う。
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore は新しいインメモリStoreを生成する。
func NewMemoryStore() Store {
	return &memoryStore{sessions: make(map[string]*Session)}
}

// GetOrCreate は識別子でセッションを検索し、未知の場合は新規生成する。
func (m *memoryStore) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		m.mu.RLock()
		sess, ok := m.sessions[id]
		m.mu.RUnlock()
		if ok {
			return sess, false
		}
	}

	sess := &Session{
		ID:        NewSessionID(),
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, true
}

// Get は既存セッションを検索する。
func (m *memoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Evict はセッションを破棄する。
func (m *memoryStore) Evict(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// ForEach は全セッションを走査する。
func (m *memoryStore) ForEach(fn func(*Session)) {
	m.mu.RLock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		snapshot = append(snapshot, sess)
	}
	m.mu.RUnlock()

	for _, sess := range snapshot {
		fn(sess)
	}
}

// NewSessionID は暗号学的乱数からセッション識別子を生成する。
// 32バイト（256ビット）を16進数で表現する。再利用はしない。
func NewSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/randの失敗は環境異常であり継続不能
		panic(err)
	}
	return hex.EncodeToString(b)
}

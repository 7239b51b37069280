// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/domain/ports/adapter"
	"video-subtitle-translator/internal/domain/ports/repository"
)

// memTaskRepo is a small in-memory implementation used by unit tests.
type memTaskRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Task
	saveErr error // used by tests to simulate save failures
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{store: make(map[string]*model.Task)}
}

func (m *memTaskRepo) Save(ctx context.Context, qx any, t *model.Task) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTaskRepo) FindByID(ctx context.Context, qx any, id string) (*model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskRepo) FindByUserID(ctx context.Context, qx any, userID string) ([]*model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Task
	for _, t := range m.store {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memUserRepo backs billing tests.
type memUserRepo struct {
	mu    sync.Mutex
	store map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, qx any, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, qx any, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByIDForUpdate(ctx context.Context, qx any, id string) (*model.User, error) {
	return m.FindByID(ctx, qx, id)
}

func (m *memUserRepo) UpdateBalance(ctx context.Context, qx any, id string, balanceCents int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.BalanceCents = balanceCents
	return nil
}

// memTxManager runs the callback without a real transaction.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// memCache satisfies TaskCache.
type memCache struct {
	mu    sync.Mutex
	store map[string]*model.Task
	puts  int
}

func newMemCache() *memCache { return &memCache{store: make(map[string]*model.Task)} }

func (c *memCache) Get(ctx context.Context, id string) (*model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.store[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

func (c *memCache) Put(ctx context.Context, t *model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *t
	c.store[t.ID] = &cp
	c.puts++
}

func (c *memCache) Invalidate(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, id)
}

// memLocker satisfies DispatchLocker.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func newMemLocker() *memLocker { return &memLocker{locks: make(map[string]string)} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return "", domain.ErrTaskNotRunnable
	}
	token := fmt.Sprintf("tok-%d", len(l.locks)+1)
	l.locks[key] = token
	return token, nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[key] == token {
		delete(l.locks, key)
	}
	return nil
}

// fakeAI runs a scripted chat function, counting calls.
type fakeAI struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, messages []adapter.Message) (string, error)
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call, messages)
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeMedia simulates the external tools by writing artifacts into dir.
type fakeMedia struct {
	dir           string
	srtContent    string
	extractErr    error
	transcribeErr error
	burnErr       error
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if f.extractErr != nil {
		return "", f.extractErr
	}
	p := filepath.Join(f.dir, "audio.mp3")
	if err := os.WriteFile(p, []byte("mp3"), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func (f *fakeMedia) Transcribe(ctx context.Context, audioPath string) (adapter.TranscribeResult, error) {
	if f.transcribeErr != nil {
		return adapter.TranscribeResult{}, f.transcribeErr
	}
	p := filepath.Join(f.dir, "audio.srt")
	if err := os.WriteFile(p, []byte(f.srtContent), 0o644); err != nil {
		return adapter.TranscribeResult{}, err
	}
	return adapter.TranscribeResult{SrtFilePath: p, SourceLanguage: "en", LanguageConfidence: 0.97}, nil
}

func (f *fakeMedia) BurnSubtitles(ctx context.Context, videoPath, srtPath string) (string, error) {
	if f.burnErr != nil {
		return "", f.burnErr
	}
	p := filepath.Join(f.dir, "burned.mp4")
	if err := os.WriteFile(p, []byte("mp4"), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

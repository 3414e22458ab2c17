package statefile

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	runtimeStateFile = "runtime.json"
	instanceLockFile = "serve.lck"
)

// RuntimeState is what the relay keeps between restarts.
type RuntimeState struct {
	// UpdateOffset is the next Telegram update id to request.
	UpdateOffset int64     `json:"update_offset"`
	BotID        int64     `json:"bot_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func (s RuntimeState) Validate() error {
	if s.UpdateOffset < 0 {
		return fmt.Errorf("update_offset must be >= 0")
	}
	if s.BotID < 0 {
		return fmt.Errorf("bot_id must be >= 0")
	}
	return nil
}

type RuntimeStore struct {
	dir string
	mu  sync.Mutex
}

func NewRuntimeStore(dir string) (*RuntimeStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("state dir is required")
	}
	return &RuntimeStore{dir: filepath.Clean(ExpandHome(dir))}, nil
}

func (s *RuntimeStore) Dir() string {
	return s.dir
}

func (s *RuntimeStore) LockPath() string {
	return filepath.Join(s.dir, instanceLockFile)
}

func (s *RuntimeStore) Load() (RuntimeState, bool, error) {
	if s == nil {
		return RuntimeState{}, false, fmt.Errorf("nil runtime store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var state RuntimeState
	ok, err := ReadJSON(filepath.Join(s.dir, runtimeStateFile), &state)
	if err != nil || !ok {
		return RuntimeState{}, false, err
	}
	if err := state.Validate(); err != nil {
		return RuntimeState{}, false, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return state, true, nil
}

func (s *RuntimeStore) Save(state RuntimeState) error {
	if s == nil {
		return fmt.Errorf("nil runtime store")
	}
	if err := state.Validate(); err != nil {
		return err
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteJSON(filepath.Join(s.dir, runtimeStateFile), state)
}

package session

import "sync"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store holds the bearer credential and user snapshot for the running
// terminal session. The transport reads the token on every request and
// calls Invalidate when the server rejects it; the registered hook fires
// exactly once no matter how many in-flight requests hit the same 401.
type Store struct {
	mu           sync.Mutex
	token        string
	user         *User
	onInvalidate func()
}

func New() *Store {
	return &Store{}
}

func (s *Store) SetCredentials(token string, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// OnInvalidate registers the hook run when the session is torn down,
// typically returning the UI to its unauthenticated entry point.
func (s *Store) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// Invalidate clears the credential and user state and fires the hook.
// Subsequent calls are no-ops until new credentials are set.
func (s *Store) Invalidate() {
	s.mu.Lock()
	if s.token == "" && s.user == nil {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	fn := s.onInvalidate
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

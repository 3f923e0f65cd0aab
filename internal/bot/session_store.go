package bot

import "sync"

// SessionStore — потокобезопасное in-memory хранилище незавершенных сессий,
// по одной на пользователя. Сессии живут только в памяти процесса:
// при перезапуске незаконченный репорт теряется, это допустимо.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // map[userID]*Session
}

// NewSessionStore создает новый экземпляр SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

// Set сохраняет сессию пользователя.
// Существующая сессия молча заменяется новой.
func (s *SessionStore) Set(userID int64, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

// Get извлекает сессию пользователя.
// Возвращает сессию и true, если она найдена, иначе — nil и false.
func (s *SessionStore) Get(userID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

// Delete удаляет сессию пользователя.
func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

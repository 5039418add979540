// AngelaMos | 2026
// session.go

package session

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Message  string `json:"m"`
	Category string `json:"c,omitempty"`
}

const (
	CategoryInfo  = "info"
	CategoryError = "error"
)

// Session is the per-client state carried in the signed session cookie.
// Handlers mutate it directly; the Manager persists it before the response
// headers are written.
type Session struct {
	ID            string
	Authenticated bool
	UserID        int64
	Role          string
	Flashes       []Flash

	revokeID string
	modified bool
}

// Login marks the session authenticated for userID. The session id is
// rotated so a cookie captured before login cannot be reused.
func (s *Session) Login(userID int64, role string) {
	s.ID = newSessionID()
	s.Authenticated = true
	s.UserID = userID
	s.Role = role
	s.modified = true
}

// Logout drops the authenticated flag and user id. The previous session id
// is revoked when the session is saved.
func (s *Session) Logout() {
	if s.Authenticated {
		s.revokeID = s.ID
	}
	s.ID = newSessionID()
	s.Authenticated = false
	s.UserID = 0
	s.Role = ""
	s.modified = true
}

// SetRole replaces the cached role, e.g. after an operator promotion.
func (s *Session) SetRole(role string) {
	if s.Role == role {
		return
	}
	s.Role = role
	s.modified = true
}

func (s *Session) Flash(message string) {
	s.FlashCategory(message, CategoryInfo)
}

func (s *Session) FlashCategory(message, category string) {
	s.Flashes = append(s.Flashes, Flash{Message: message, Category: category})
	s.modified = true
}

// PopFlashes returns the queued notices and clears the queue.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	s.modified = true
	return flashes
}

func (s *Session) Modified() bool {
	return s.modified
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated && s.Role == "admin"
}

// empty reports whether the session carries nothing worth a cookie.
func (s *Session) empty() bool {
	return !s.Authenticated && len(s.Flashes) == 0
}

func anonymous() *Session {
	return &Session{ID: newSessionID()}
}

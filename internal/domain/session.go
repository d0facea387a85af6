package domain

// Session is the per-client state carried between requests: at most one
// signed-in username and a one-shot flash message.
type Session struct {
	Username string
	Flash    string
}

func (s *Session) SignedIn() bool {
	return s != nil && s.Username != ""
}

func (s *Session) SignIn(username string) {
	s.Username = username
}

func (s *Session) SignOut() {
	s.Username = ""
}

// RequireSignedIn returns ErrNotAuthenticated when no user is signed in.
// Every mutating document operation calls it before touching storage.
func (s *Session) RequireSignedIn() error {
	if !s.SignedIn() {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Session) SetFlash(msg string) {
	s.Flash = msg
}

// TakeFlash returns the pending flash message and clears it.
func (s *Session) TakeFlash() string {
	if s == nil {
		return ""
	}
	msg := s.Flash
	s.Flash = ""
	return msg
}

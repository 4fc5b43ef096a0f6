package gateway

// Staging is the backend-independent half of a Session: it stages writes in
// a ChangeSet and refuses them once the session is closed. Backends embed it
// and add Find, SaveChanges and Close. The zero value is ready to use.
type Staging struct {
	changes *ChangeSet
	closed  bool
}

// Changes returns the staged writes.
func (s *Staging) Changes() *ChangeSet {
	if s.changes == nil {
		s.changes = NewChangeSet()
	}
	return s.changes
}

// CheckOpen returns ErrSessionClosed after MarkClosed.
func (s *Staging) CheckOpen() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// MarkClosed closes the staging area. Reports false when it was already
// closed.
func (s *Staging) MarkClosed() bool {
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// Attach implements Session.
func (s *Staging) Attach(r Record) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	s.Changes().Attach(r)
	return nil
}

// MarkModified implements Session.
func (s *Staging) MarkModified(r Record, field string) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	return s.Changes().MarkModified(r, field)
}

// Add implements Session.
func (s *Staging) Add(r Record) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	s.Changes().Add(r)
	return nil
}

// Remove implements Session.
func (s *Staging) Remove(r Record) error {
	if err := s.CheckOpen(); err != nil {
		return err
	}
	s.Changes().Remove(r)
	return nil
}

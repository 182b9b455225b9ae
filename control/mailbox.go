package control

import "sync"

// Mailbox holds the most recent Params. Publishing replaces the previous
// record in full; readers that poll with a sequence number see each record
// at most once.
type Mailbox struct {
	mu  sync.RWMutex
	cur Params
	seq uint64
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) Publish(p Params) {
	m.mu.Lock()
	m.cur = p
	m.seq++
	m.mu.Unlock()
}

// Latest returns the current record and whether anything was ever published.
func (m *Mailbox) Latest() (Params, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur, m.seq > 0
}

// Since returns the current record if it is newer than seen, along with the
// sequence number to pass next time.
func (m *Mailbox) Since(seen uint64) (Params, uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.seq == seen {
		return Params{}, seen, false
	}
	return m.cur, m.seq, true
}

package board

import "sync"

// LocalState holds purely local UI state: the connection flag, the
// drag-in-progress flag, the current user and the current selection.
// None of it is ever sent to or received from the server.
type LocalState struct {
	lock        sync.RWMutex
	connected   bool
	dragging    bool
	currentUser *LocalUser
	selection   string
}

func NewLocalState() *LocalState {
	return &LocalState{}
}

func (l *LocalState) Connected() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.connected
}

func (l *LocalState) SetConnected(connected bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.connected = connected
}

func (l *LocalState) Dragging() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.dragging
}

func (l *LocalState) SetDragging(dragging bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.dragging = dragging
}

func (l *LocalState) CurrentUser() *LocalUser {
	l.lock.RLock()
	defer l.lock.RUnlock()
	if l.currentUser == nil {
		return nil
	}
	user := *l.currentUser
	return &user
}

func (l *LocalState) SetCurrentUser(user LocalUser) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.currentUser = &user
}

// Selection returns the selected entity ID, or "" when nothing is selected.
func (l *LocalState) Selection() string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.selection
}

func (l *LocalState) SetSelection(id string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.selection = id
}

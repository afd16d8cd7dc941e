package registry

import "github.com/mikekhromov/Bot-ReviewReminder/internal/domain"

// Entry holds one chat's declared review windows. Either slot may be unset.
// Entries live for the whole process; nothing ever deletes them.
type Entry struct {
	Morning *domain.TimeWindow
	Evening *domain.TimeWindow
}

// Window returns the stored window for a slot, nil when unset.
func (e *Entry) Window(slot domain.Slot) *domain.TimeWindow {
	if slot == domain.SlotEvening {
		return e.Evening
	}
	return e.Morning
}

// SetWindow stores w (possibly nil) into the given slot.
func (e *Entry) SetWindow(slot domain.Slot, w *domain.TimeWindow) {
	if slot == domain.SlotEvening {
		e.Evening = w
		return
	}
	e.Morning = w
}

// Registry maps chat IDs to their window configuration. It does no locking of
// its own: the scheduler serializes every read and write behind its mutex.
type Registry struct {
	chats map[int64]*Entry
}

func New() *Registry {
	return &Registry{chats: make(map[int64]*Entry)}
}

// GetOrCreate returns the entry for chatID, creating an empty one on first use.
func (r *Registry) GetOrCreate(chatID int64) *Entry {
	e, ok := r.chats[chatID]
	if !ok {
		e = &Entry{}
		r.chats[chatID] = e
	}
	return e
}

// Get returns the entry for chatID, or nil if the chat never set windows.
func (r *Registry) Get(chatID int64) *Entry {
	return r.chats[chatID]
}

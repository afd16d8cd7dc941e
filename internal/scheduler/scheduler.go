package scheduler

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikekhromov/Bot-ReviewReminder/internal/domain"
	"github.com/mikekhromov/Bot-ReviewReminder/internal/registry"
)

// Sender is the minimal interface the scheduler needs to deliver a reminder.
// telegram.Bot implements it (method: SendMessage).
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Timer is the stoppable handle behind an armed wake-up.
type Timer interface {
	Stop() bool
}

// reminderFmt is filled with the slot label and the literal window string.
const reminderFmt = "⏰ Через 10 минут начинается %s окно PR (%s)! @all"

// slotKey identifies one armed timer: a chat and one of its two window slots.
type slotKey struct {
	chatID int64
	slot   domain.Slot
}

// timerEntry pins down an armed timer's identity. The entry goes into the
// handle table and into the fire callback before the underlying timer is
// created, so a zero-delay callback never reads a handle the arming path is
// still writing. The t field is only touched under the scheduler mutex.
type timerEntry struct {
	t Timer
}

func (e *timerEntry) Stop() bool { return e.t.Stop() }

// Scheduler owns the chat registry and all live reminder timers. Timer
// callbacks run on their own goroutines, so every state transition (arm,
// fire, cancel, shutdown) is serialized behind mu; this is what keeps the
// one-armed-timer-per-(chat,slot) invariant intact under concurrent fires.
// The Sender call itself happens outside the lock so a slow delivery never
// stalls other chats' scheduling.
type Scheduler struct {
	log    *zap.Logger
	sender Sender

	now   func() time.Time
	after func(d time.Duration, f func()) Timer

	mu      sync.Mutex
	reg     *registry.Registry
	timers  map[slotKey]*timerEntry
	stopped bool
}

// New creates a Scheduler dispatching through sender. Wall-clock time and
// time.AfterFunc are used for scheduling.
func New(log *zap.Logger, sender Sender) *Scheduler {
	return &Scheduler{
		log:    log,
		sender: sender,
		now:    time.Now,
		after:  func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		reg:    registry.New(),
		timers: make(map[slotKey]*timerEntry),
	}
}

// SetWindows replaces the chat's window configuration. Existing timers for
// both slots are cancelled before new ones are armed, so repeated or rapid
// /set_windows calls never leave duplicate timers behind. Either window may
// be nil, which leaves that slot unarmed.
func (s *Scheduler) SetWindows(chatID int64, morning, evening *domain.TimeWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	e := s.reg.GetOrCreate(chatID)
	e.SetWindow(domain.SlotMorning, cloneWindow(morning))
	e.SetWindow(domain.SlotEvening, cloneWindow(evening))
	s.armLocked(chatID, domain.SlotMorning, e.Window(domain.SlotMorning))
	s.armLocked(chatID, domain.SlotEvening, e.Window(domain.SlotEvening))
}

// Windows returns copies of the chat's stored windows (nil when unset).
func (s *Scheduler) Windows(chatID int64) (morning, evening *domain.TimeWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.reg.Get(chatID)
	if e == nil {
		return nil, nil
	}
	return cloneWindow(e.Morning), cloneWindow(e.Evening)
}

// ClearChat cancels every armed timer for the chat. Stored windows are kept,
// so /show_windows still reports them until they are overwritten.
func (s *Scheduler) ClearChat(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(slotKey{chatID, domain.SlotMorning})
	s.cancelLocked(slotKey{chatID, domain.SlotEvening})
	s.log.Info("chat reminders cleared", zap.Int64("chatID", chatID))
}

// Shutdown cancels every armed timer across all chats and refuses any further
// arming. Idempotent; called once on process termination.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	n := len(s.timers)
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	s.log.Info("scheduler stopped", zap.Int("cancelledTimers", n))
}

// armLocked cancels any existing timer for the slot and, when w is non-nil,
// schedules the next lead-adjusted fire. Caller holds mu.
func (s *Scheduler) armLocked(chatID int64, slot domain.Slot, w *domain.TimeWindow) {
	key := slotKey{chatID, slot}
	s.cancelLocked(key)
	if w == nil || s.stopped {
		return
	}
	armed := *w
	now := s.now()
	fireAt := domain.NextFire(now, armed.StartHour, armed.StartMinute, domain.ReminderLead)

	entry := &timerEntry{}
	s.timers[key] = entry
	entry.t = s.after(fireAt.Sub(now), func() { s.onFire(chatID, slot, armed, entry) })

	s.log.Info("reminder armed",
		zap.Int64("chatID", chatID),
		zap.String("slot", slot.String()),
		zap.String("window", armed.Raw),
		zap.Time("fireAt", fireAt),
	)
}

// cancelLocked stops and forgets the timer for key, if any. Caller holds mu.
func (s *Scheduler) cancelLocked(key slotKey) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// onFire runs on the timer goroutine when a wake-up elapses. It re-reads the
// chat's current window for the slot: a fire whose handle was already
// replaced, or whose window value no longer matches what was armed, is stale
// and sends nothing. A changed non-nil window is immediately re-armed so that
// a redefinition never silently drops future reminders. A matching fire
// dispatches the reminder and re-arms for the following day; delivery
// failures are logged and never break the cycle.
func (s *Scheduler) onFire(chatID int64, slot domain.Slot, armed domain.TimeWindow, self *timerEntry) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	key := slotKey{chatID, slot}
	if s.timers[key] != self {
		// Stop raced the firing: this handle was cancelled or replaced.
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)

	var current *domain.TimeWindow
	if e := s.reg.Get(chatID); e != nil {
		current = e.Window(slot)
	}
	if current == nil || *current != armed {
		s.log.Info("stale fire discarded",
			zap.Int64("chatID", chatID),
			zap.String("slot", slot.String()),
			zap.String("armedWindow", armed.Raw),
		)
		s.armLocked(chatID, slot, current)
		s.mu.Unlock()
		return
	}
	// Re-arm for tomorrow before dispatching; delivery outcome does not
	// affect the recurrence.
	s.armLocked(chatID, slot, current)
	s.mu.Unlock()

	text := fmt.Sprintf(reminderFmt, slot.Label(), armed.Raw)
	if err := s.send(chatID, text); err != nil {
		s.log.Error("reminder send failed",
			zap.Error(err),
			zap.Int64("chatID", chatID),
			zap.String("slot", slot.String()),
		)
	}
}

// send dispatches text through the Sender, converting a transport panic into
// an error so one bad delivery never crashes the process.
func (s *Scheduler) send(chatID int64, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	return s.sender.SendMessage(chatID, text)
}

func cloneWindow(w *domain.TimeWindow) *domain.TimeWindow {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}

package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikekhromov/Bot-ReviewReminder/internal/domain"
)

// fakeTimer records its delay and lets tests run the callback by hand.
type fakeTimer struct {
	f       func()
	delay   time.Duration
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fire runs the armed callback the way an elapsed time.AfterFunc would.
// A fired timer is spent, same as the real thing.
func (t *fakeTimer) fire() {
	t.stopped = true
	t.f()
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSender) SendMessage(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return s.err
}

func (s *fakeSender) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// testNow is 09:30 on a fixed day; a 10:00 window arms 20 minutes out.
var testNow = time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)

func newTestScheduler(sender Sender) (*Scheduler, *[]*fakeTimer) {
	s := New(zap.NewNop(), sender)
	s.now = func() time.Time { return testNow }
	timers := &[]*fakeTimer{}
	s.after = func(d time.Duration, f func()) Timer {
		t := &fakeTimer{f: f, delay: d}
		*timers = append(*timers, t)
		return t
	}
	return s, timers
}

func mustWindow(t *testing.T, s string) *domain.TimeWindow {
	t.Helper()
	w, err := domain.ParseWindow(s)
	require.NoError(t, err)
	return &w
}

func active(timers []*fakeTimer) []*fakeTimer {
	var out []*fakeTimer
	for _, ft := range timers {
		if !ft.stopped {
			out = append(out, ft)
		}
	}
	return out
}

func TestSetWindows_ArmsBothSlots(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), mustWindow(t, "16:00-18:00"))

	require.Len(t, *timers, 2)
	assert.Equal(t, 20*time.Minute, (*timers)[0].delay)             // 09:50 fire
	assert.Equal(t, 6*time.Hour+20*time.Minute, (*timers)[1].delay) // 15:50 fire
	assert.Len(t, active(*timers), 2)
}

func TestSetWindows_MorningOnly(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)

	require.Len(t, *timers, 1)
	morning, evening := s.Windows(1)
	require.NotNil(t, morning)
	assert.Equal(t, "10:00-12:00", morning.Raw)
	assert.Nil(t, evening)
}

func TestSetWindows_ReplacesExistingTimers(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), mustWindow(t, "16:00-18:00"))
	s.SetWindows(1, mustWindow(t, "11:00-13:00"), mustWindow(t, "17:00-19:00"))

	// Four timers armed in total, only the last two still live.
	require.Len(t, *timers, 4)
	assert.True(t, (*timers)[0].stopped)
	assert.True(t, (*timers)[1].stopped)
	assert.Len(t, active(*timers), 2)
}

func TestFire_SendsAndRearms(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(7, mustWindow(t, "10:00-12:00"), nil)
	(*timers)[0].fire()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "⏰ Через 10 минут начинается утреннее окно PR (10:00-12:00)! @all", msgs[0])

	// The slot is re-armed for the next occurrence.
	require.Len(t, *timers, 2)
	assert.Len(t, active(*timers), 1)
}

func TestFire_EveningLabel(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(7, mustWindow(t, "10:00-12:00"), mustWindow(t, "16:00-18:00"))
	(*timers)[1].fire()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "⏰ Через 10 минут начинается вечернее окно PR (16:00-18:00)! @all", msgs[0])
}

func TestFire_ReplacedHandleIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	old := (*timers)[0]
	s.SetWindows(1, mustWindow(t, "11:00-13:00"), nil)

	// Simulate Stop racing the firing: the replaced callback still runs.
	old.fire()

	assert.Empty(t, sender.messages())
	assert.Len(t, active(*timers), 1)
}

func TestFire_StaleWindowSuppressedAndRearmed(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	require.Len(t, *timers, 1)

	// Change the stored window underneath the armed timer without going
	// through SetWindows, so the live handle carries an outdated value.
	s.mu.Lock()
	s.reg.GetOrCreate(1).Morning = mustWindow(t, "11:00-13:00")
	s.mu.Unlock()

	(*timers)[0].fire()

	assert.Empty(t, sender.messages(), "stale fire must not notify")
	live := active(*timers)
	require.Len(t, live, 1, "the changed window must be re-armed without gap")
	assert.Equal(t, time.Hour+20*time.Minute, live[0].delay) // 10:50 fire for 11:00
}

func TestFire_ZeroDelayFireUsesOwnHandle(t *testing.T) {
	sender := &fakeSender{}
	s := New(zap.NewNop(), sender)
	s.now = func() time.Time { return testNow }

	// The first armed timer fires on its own goroutine right away, like a
	// real time.AfterFunc whose delay already elapsed before it returned.
	// The callback must still recognize its handle as the live one.
	fired := make(chan struct{})
	var calls int
	var timers []*fakeTimer
	s.after = func(d time.Duration, f func()) Timer {
		ft := &fakeTimer{f: f, delay: d}
		timers = append(timers, ft)
		calls++
		if calls == 1 {
			go func() {
				ft.fire()
				close(fired)
			}()
		}
		return ft
	}

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	<-fired

	msgs := sender.messages()
	require.Len(t, msgs, 1, "an immediate fire must still dispatch")
	assert.Len(t, active(timers), 1, "the slot must be re-armed for the next day")
}

type panickySender struct{}

func (panickySender) SendMessage(int64, string) error { panic("transport exploded") }

func TestFire_SenderPanicDoesNotCrash(t *testing.T) {
	s, timers := newTestScheduler(panickySender{})

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	require.NotPanics(t, func() { (*timers)[0].fire() })
	assert.Len(t, active(*timers), 1, "recurrence must survive a panicking transport")
}

func TestFire_SenderFailureStillRearms(t *testing.T) {
	sender := &fakeSender{err: errors.New("telegram unavailable")}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	(*timers)[0].fire()

	require.Len(t, sender.messages(), 1)
	assert.Len(t, active(*timers), 1, "delivery failure must not break the cycle")
}

func TestClearChat_StopsTimersKeepsWindows(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), mustWindow(t, "16:00-18:00"))
	s.ClearChat(1)

	assert.Empty(t, active(*timers))
	morning, evening := s.Windows(1)
	require.NotNil(t, morning)
	require.NotNil(t, evening)
	assert.Equal(t, "10:00-12:00", morning.Raw)
	assert.Equal(t, "16:00-18:00", evening.Raw)
}

func TestClearChat_OtherChatsUnaffected(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), nil)
	s.SetWindows(2, mustWindow(t, "10:00-12:00"), nil)
	s.ClearChat(1)

	assert.Len(t, active(*timers), 1)
}

func TestShutdown_CancelsEverythingAndRefusesArming(t *testing.T) {
	sender := &fakeSender{}
	s, timers := newTestScheduler(sender)

	s.SetWindows(1, mustWindow(t, "10:00-12:00"), mustWindow(t, "16:00-18:00"))
	s.SetWindows(2, mustWindow(t, "9:00-11:00"), nil)
	s.Shutdown()

	assert.Empty(t, active(*timers))

	// Elapsed delays must not dispatch after shutdown.
	for _, ft := range *timers {
		ft.fire()
	}
	assert.Empty(t, sender.messages())

	// No new timers after shutdown.
	before := len(*timers)
	s.SetWindows(3, mustWindow(t, "10:00-12:00"), nil)
	assert.Len(t, *timers, before)

	// Idempotent.
	s.Shutdown()
}

func TestWindows_UnknownChat(t *testing.T) {
	sender := &fakeSender{}
	s, _ := newTestScheduler(sender)

	morning, evening := s.Windows(42)
	assert.Nil(t, morning)
	assert.Nil(t, evening)
}

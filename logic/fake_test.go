package logic_test

import (
	"sync"
	"time"

	"github.com/nishsab/ndn-svs/sched"
	"github.com/nishsab/ndn-svs/transport"
)

// fakeScheduler gives tests manual control over timer firing instead of
// depending on wall-clock sleeps: Schedule only records the callback,
// FireAll invokes every currently pending one.
type fakeScheduler struct {
	mu      sync.Mutex
	next    sched.Handle
	pending map[sched.Handle]func()
	now     int64
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[sched.Handle]func())}
}

func (f *fakeScheduler) Schedule(delay time.Duration, fn func()) sched.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.next
	f.next++
	f.pending[h] = fn
	return h
}

func (f *fakeScheduler) Cancel(h sched.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, h)
}

func (f *fakeScheduler) Now() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeScheduler) Stop() {}

// FireAll invokes and clears every pending callback.
func (f *fakeScheduler) FireAll() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.pending))
	for h, fn := range f.pending {
		fns = append(fns, fn)
		delete(f.pending, h)
	}
	f.now++
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// fakeTransport records RegisterPrefix and ExpressInterest calls without
// any real network I/O.
type fakeTransport struct {
	mu         sync.Mutex
	onInterest func(transport.Packet)
	sent       []transport.Packet
}

func newFakeTransport() *fakeTransport { return &fakeTransport{} }

func (f *fakeTransport) RegisterPrefix(prefix transport.Name, onInterest func(transport.Packet), onRegisterFail func(error)) (transport.RegisteredPrefix, error) {
	f.mu.Lock()
	f.onInterest = onInterest
	f.mu.Unlock()
	return fakeRegisteredPrefix{}, nil
}

func (f *fakeTransport) ExpressInterest(pkt transport.Packet, onData func(transport.Packet), onNack func(string), onTimeout func()) error {
	f.mu.Lock()
	f.sent = append(f.sent, pkt)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Put(transport.Packet) error { return nil }
func (f *fakeTransport) ProcessEvents() error        { return nil }
func (f *fakeTransport) Shutdown()                   {}

func (f *fakeTransport) lastSent() (transport.Packet, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return transport.Packet{}, false
	}
	return f.sent[len(f.sent)-1], true
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeTransport) deliver(pkt transport.Packet) {
	f.mu.Lock()
	h := f.onInterest
	f.mu.Unlock()
	if h != nil {
		h(pkt)
	}
}

type fakeRegisteredPrefix struct{}

func (fakeRegisteredPrefix) Close() error { return nil }

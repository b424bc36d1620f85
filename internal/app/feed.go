package app

import (
	"sync"

	"quizhub-service/internal/domain"
)

// ResultFeed fans result notices out to per-quiz subscribers in process.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ResultNotice]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{
		subscribers: make(map[string]map[chan domain.ResultNotice]struct{}),
	}
}

// Subscribe returns a channel of notices for quizID. The caller must invoke
// the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe(quizID string) (<-chan domain.ResultNotice, func()) {
	ch := make(chan domain.ResultNotice, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.ResultNotice]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers a notice to every subscriber of its quiz without blocking.
// A full subscriber loses its oldest pending notice.
func (f *ResultFeed) Publish(notice domain.ResultNotice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[notice.QuizID] {
		select {
		case ch <- notice:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- notice
		}
	}
}

// Close drops every subscriber of quizID, closing their channels.
func (f *ResultFeed) Close(quizID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[quizID] {
		close(ch)
	}
	delete(f.subscribers, quizID)
}

// Subscribers reports how many subscribers quizID has.
func (f *ResultFeed) Subscribers(quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID])
}

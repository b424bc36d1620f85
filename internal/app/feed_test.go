package app_test

import (
	"testing"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

func TestResultFeedDropsOldestWhenFull(t *testing.T) {
	feed := app.NewResultFeed()
	ch, cancel := feed.Subscribe("q1")
	defer cancel()

	for i := 0; i < 20; i++ {
		feed.Publish(domain.ResultNotice{QuizID: "q1", Score: float64(i)})
	}
	feed.Publish(domain.ResultNotice{QuizID: "q2", Score: 99})

	var last domain.ResultNotice
	count := 0
	for len(ch) > 0 {
		last = <-ch
		count++
	}
	if count != 8 {
		t.Fatalf("expected a full buffer of 8, got %d", count)
	}
	if last.Score != 19 {
		t.Fatalf("expected the latest notice last, got %v", last.Score)
	}
}

func TestResultFeedCancelAndClose(t *testing.T) {
	feed := app.NewResultFeed()
	a, cancelA := feed.Subscribe("q1")
	b, cancelB := feed.Subscribe("q1")
	if n := feed.Subscribers("q1"); n != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n)
	}

	cancelA()
	cancelA()
	if _, ok := <-a; ok {
		t.Fatalf("expected cancelled channel closed")
	}
	if n := feed.Subscribers("q1"); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	feed.Close("q1")
	if _, ok := <-b; ok {
		t.Fatalf("expected closed channel")
	}
	cancelB()
	if n := feed.Subscribers("q1"); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}

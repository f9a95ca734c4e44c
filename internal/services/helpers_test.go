package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voltline/site/internal/locale"
)

type loggedEvent struct {
	event  string
	fields map[string]any
}

type recordingLogger struct {
	mu     sync.Mutex
	events []loggedEvent
}

func (l *recordingLogger) log(_ context.Context, event string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, loggedEvent{event: event, fields: fields})
}

func (l *recordingLogger) count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%03d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var (
	testNow       = time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	testSupported = []string{"cs", "en", "de"}
	testResolver  = locale.NewResolver("cs", locale.PolicyDefaultLocale)
)

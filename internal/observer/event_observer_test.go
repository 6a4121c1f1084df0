package observer

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []AnalysisEvent
}

func (o *recordingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string { return "panicking" }

func TestMetricsObserverCounts(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisRejected})
	m.OnEvent(ctx, AnalysisEvent{EventType: ProviderFailed})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, IsMock: true, ProcessingTime: 100 * time.Millisecond})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: 300 * time.Millisecond})

	got := m.GetMetrics()
	want := map[string]int64{
		"total_analyses":         3,
		"rejected_analyses":      1,
		"live_analyses":          1,
		"fallback_analyses":      1,
		"provider_failures":      1,
		"avg_processing_time_ms": 200,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Expected %s=%d, got %v", k, v, got[k])
		}
	}
}

func TestEventPublisherDeliversAndSurvivesPanics(t *testing.T) {
	p := NewEventPublisher()
	rec := &recordingObserver{name: "recorder"}
	p.Subscribe(rec)
	p.Subscribe(panickingObserver{})

	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted, RequestID: "r1"})
	p.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || rec.events[0].RequestID != "r1" {
		t.Fatalf("Expected one delivered event, got %+v", rec.events)
	}
	if rec.events[0].Timestamp.IsZero() {
		t.Error("Expected publisher to stamp the event")
	}
}

func TestEventPublisherUnsubscribe(t *testing.T) {
	p := NewEventPublisher()
	rec := &recordingObserver{name: "recorder"}
	p.Subscribe(rec)
	p.Unsubscribe(rec)

	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisStarted})
	p.Wait()

	if len(rec.events) != 0 {
		t.Errorf("Expected no events after unsubscribe, got %d", len(rec.events))
	}
}

func TestLoggingObserverWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	NewLoggingObserver(l).OnEvent(context.Background(), AnalysisEvent{
		EventType:    ProviderFailed,
		RequestID:    "req-9",
		ErrorMessage: "ModelNotOpen: not activated",
		Metadata:     map[string]interface{}{"model": "ep-1"},
	})

	out := buf.String()
	for _, want := range []string{`"request_id":"req-9"`, `"error":"ModelNotOpen: not activated"`, `"model":"ep-1"`, `"level":"warning"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %s, got %s", want, out)
		}
	}
}

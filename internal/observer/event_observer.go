package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisEvent represents one step of an analysis request
type AnalysisEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id,omitempty"`
	ImageCount     int                    `json:"image_count"`
	ProcessingTime time.Duration          `json:"processing_time"`
	IsMock         bool                   `json:"is_mock"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of analysis event
type EventType string

const (
	// AnalysisStarted when a request enters validation
	AnalysisStarted EventType = "analysis_started"
	// AnalysisRejected when the batch fails validation
	AnalysisRejected EventType = "analysis_rejected"
	// ProviderFailed when the live provider call yields no usable text
	ProviderFailed EventType = "provider_failed"
	// AnalysisCompleted when an envelope is returned, live or fallback
	AnalysisCompleted EventType = "analysis_completed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event AnalysisEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event AnalysisEvent)
}

// LoggingObserver logs analysis events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles analysis events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"request_id":         event.RequestID,
		"images":             event.ImageCount,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"is_mock":            event.IsMock,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Debug("Analysis started")
	case AnalysisRejected:
		entry.Info("Analysis rejected")
	case ProviderFailed:
		entry.Warn("Provider call failed, using fallback result")
	case AnalysisCompleted:
		entry.Info("Analysis completed")
	default:
		entry.Info("Analysis event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver counts analysis outcomes
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	rejectedAnalyses    int64
	liveAnalyses        int64
	fallbackAnalyses    int64
	providerFailures    int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles analysis events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisRejected:
		o.rejectedAnalyses++
	case ProviderFailed:
		o.providerFailures++
	case AnalysisCompleted:
		if event.IsMock {
			o.fallbackAnalyses++
		} else {
			o.liveAnalyses++
		}
		o.totalProcessingTime += event.ProcessingTime
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	completed := o.liveAnalyses + o.fallbackAnalyses
	avgProcessingTime := time.Duration(0)
	if completed > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(completed)
	}

	return map[string]interface{}{
		"total_analyses":         o.totalAnalyses,
		"rejected_analyses":      o.rejectedAnalyses,
		"live_analyses":          o.liveAnalyses,
		"fallback_analyses":      o.fallbackAnalyses,
		"provider_failures":      o.providerFailures,
		"avg_processing_time_ms": avgProcessingTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	wg        sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer concurrently, so a
// slow observer never delays the request that produced the event.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event AnalysisEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.wg.Add(1)
		go func(obs Observer) {
			defer p.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(context.WithoutCancel(ctx), event)
		}(observer)
	}
}

// Wait blocks until every notification sent so far has been handled.
func (p *EventPublisher) Wait() {
	p.wg.Wait()
}

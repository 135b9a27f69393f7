// internal/app/service/service.go

// Package service holds the domain operations behind the REST API: input
// validation, persistence through store.Store, the derived task_assigned
// notification, and fan-out of every committed change.
package service

import (
	"errors"
	"time"

	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/system/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Derived-write policies for the task + notification pair.
const (
	// PolicySaga writes the task, then the notification. A failed
	// notification write is logged and the request still succeeds.
	PolicySaga = "saga"
	// PolicyTxn writes both in one store transaction, falling back to
	// PolicySaga when the store cannot run transactions.
	PolicyTxn = "txn"
)

// Options tune service behaviour.
type Options struct {
	// StrictReferences makes Create fail with NotFoundError when a task's
	// project or a comment's task does not exist.
	StrictReferences bool
	// NotifyWritePolicy is PolicySaga or PolicyTxn. Empty means PolicySaga.
	NotifyWritePolicy string
}

// Publisher delivers events to connected clients. Implementations must not
// block on slow receivers.
type Publisher interface {
	ToRoom(room, event string, payload any)
	ToAll(event string, payload any)
}

// Service implements every domain operation.
type Service struct {
	store    store.Store
	pub      Publisher
	tokens   *auth.TokenManager
	opts     Options
	log      *zap.Logger
	notifyCB *gobreaker.CircuitBreaker
	now      func() time.Time
}

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectflow_service_operations_total",
		Help: "Domain operations by operation and result",
	}, []string{"operation", "result"})

	derivedNotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectflow_derived_notification_failures_total",
		Help: "Derived notifications that could not be written",
	})
)

// New wires a Service. pub may be nil, in which case events are dropped with
// a warning.
func New(st store.Store, pub Publisher, tokens *auth.TokenManager, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NotifyWritePolicy == "" {
		opts.NotifyWritePolicy = PolicySaga
	}
	s := &Service{
		store:  st,
		pub:    pub,
		tokens: tokens,
		opts:   opts,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.notifyCB = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// Options returns the options the service was built with.
func (s *Service) Options() Options { return s.opts }

func (s *Service) toRoom(room, event string, payload any) {
	if s.pub == nil {
		s.log.Warn("fan-out not initialized; event dropped",
			zap.String("event", event), zap.String("room", room))
		return
	}
	s.pub.ToRoom(room, event, payload)
}

func (s *Service) toAll(event string, payload any) {
	if s.pub == nil {
		s.log.Warn("fan-out not initialized; event dropped", zap.String("event", event))
		return
	}
	s.pub.ToAll(event, payload)
}

// observe counts the outcome of op and passes err through.
func observe(op string, err error) error {
	operationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	return err
}

func resultLabel(err error) string {
	var (
		ve *ValidationError
		nf *NotFoundError
		ae *AuthError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ae):
		return "auth"
	default:
		return "store"
	}
}

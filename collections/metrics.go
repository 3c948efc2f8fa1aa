package collections

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports register activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	eventsTranslated     *prometheus.CounterVec
	notificationsDropped *prometheus.CounterVec
	itemsDisposed        *prometheus.CounterVec
	innerSubscriptions   *prometheus.GaugeVec
}

// NewMetrics creates the register metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		eventsTranslated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecoll_events_translated_total",
			Help: "Translated change events published by registers, by outbound kind",
		}, []string{"register", "kind"}),
		notificationsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecoll_notifications_dropped_total",
			Help: "Source notifications ignored because the register was disposed",
		}, []string{"register"}),
		itemsDisposed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "livecoll_items_disposed_total",
			Help: "Derived items disposed on eviction",
		}, []string{"register"}),
		innerSubscriptions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "livecoll_inner_subscriptions",
			Help: "Live section subscriptions held by flattening registers",
		}, []string{"register"}),
	}
}

func (m *Metrics) eventTranslated(register string, kind ChangeKind) {
	if m == nil {
		return
	}
	m.eventsTranslated.WithLabelValues(register, kind.String()).Inc()
}

func (m *Metrics) notificationDropped(register string) {
	if m == nil {
		return
	}
	m.notificationsDropped.WithLabelValues(register).Inc()
}

func (m *Metrics) disposed(register string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.itemsDisposed.WithLabelValues(register).Add(float64(n))
}

func (m *Metrics) setInnerSubscriptions(register string, n int) {
	if m == nil {
		return
	}
	m.innerSubscriptions.WithLabelValues(register).Set(float64(n))
}

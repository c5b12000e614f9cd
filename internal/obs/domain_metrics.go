package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingFallbackTotal counts resolutions that fell back to the sale price.
	PricingFallbackTotal prometheus.Counter
	// TierEncodingDroppedTotal counts malformed tier encodings discarded at parse time.
	TierEncodingDroppedTotal prometheus.Counter
	// ReconcileItemsTotal counts reconciled line items by resolution outcome.
	ReconcileItemsTotal *prometheus.CounterVec
	// CartWriteFlushTotal counts debounced cart writes by outcome.
	CartWriteFlushTotal *prometheus.CounterVec
	// ImageProbeTotal counts image existence probes by result.
	ImageProbeTotal *prometheus.CounterVec
	// OrdersCreatedTotal counts orders accepted at checkout.
	OrdersCreatedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_fallback_total",
			Help:      "Count of price resolutions that used the fallback sale price.",
		})
		TierEncodingDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_encoding_dropped_total",
			Help:      "Count of malformed tier encodings discarded during parsing.",
		})
		ReconcileItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_items_total",
			Help:      "Count of reconciled cart line items by product resolution outcome.",
		}, []string{"resolved"})
		CartWriteFlushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_write_flush_total",
			Help:      "Count of debounced cart quantity flushes by outcome.",
		}, []string{"result"})
		ImageProbeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_probe_total",
			Help:      "Count of image existence probes by result.",
		}, []string{"result"})
		OrdersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of orders accepted at checkout.",
		})
		reg.MustRegister(
			PricingFallbackTotal,
			TierEncodingDroppedTotal,
			ReconcileItemsTotal,
			CartWriteFlushTotal,
			ImageProbeTotal,
			OrdersCreatedTotal,
		)
	})
}

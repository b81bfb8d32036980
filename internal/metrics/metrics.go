package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the ticketing engine's counters. Services treat it as
// optional and nil-check before incrementing.
type Collector struct {
	reg *prometheus.Registry

	TicketsCreated   prometheus.Counter
	TicketsConfirmed prometheus.Counter
	TicketsCancelled prometheus.Counter
	TicketsExpired   prometheus.Counter

	TripsStarted prometheus.Counter
	TripsEnded   prometheus.Counter

	WalletDebits     prometheus.Counter
	WalletRejections prometheus.Counter

	FareCharged prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TicketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_tickets_created_total",
			Help: "Total PENDING tickets created from scans.",
		}),
		TicketsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_tickets_confirmed_total",
			Help: "Total tickets confirmed after wallet debit.",
		}),
		TicketsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_tickets_cancelled_total",
			Help: "Total tickets cancelled by commuters.",
		}),
		TicketsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_tickets_expired_total",
			Help: "Total tickets lazily expired on access.",
		}),
		TripsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_trips_started_total",
			Help: "Total trips started by operators.",
		}),
		TripsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_trips_ended_total",
			Help: "Total trips ended by operators.",
		}),
		WalletDebits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_wallet_debits_total",
			Help: "Total successful wallet debits.",
		}),
		WalletRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farebox_wallet_rejections_total",
			Help: "Total wallet debits rejected for insufficient balance.",
		}),
		FareCharged: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "farebox_fare_charged_minor_units",
			Help:    "Distribution of confirmed total fares in minor units.",
			Buckets: prometheus.ExponentialBuckets(50, 2, 12),
		}),
	}

	reg.MustRegister(
		c.TicketsCreated, c.TicketsConfirmed, c.TicketsCancelled, c.TicketsExpired,
		c.TripsStarted, c.TripsEnded,
		c.WalletDebits, c.WalletRejections,
		c.FareCharged,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

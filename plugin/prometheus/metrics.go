// Package prometheus implements the prometheus directive that exposes
// connected client metrics over HTTP.
package prometheus

import (
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPath = "/metrics"
	defaultAddr = "localhost:9180"
)

var (
	connectedClients  *prometheus.GaugeVec
	clientConnects    *prometheus.CounterVec
	clientDisconnects *prometheus.CounterVec
	once              sync.Once
)

// Metrics represents the prometheus metrics endpoint
type Metrics struct {
	addr string // where do we listen
	path string
}

// NewMetrics creates a new Metrics
func NewMetrics(path, addr string) *Metrics {
	p := path
	if path == "" {
		p = defaultPath
	}
	a := addr
	if addr == "" {
		a = defaultAddr
	}
	return &Metrics{
		path: p,
		addr: a,
	}
}

func define() {
	connectedClients = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tether_connected_clients",
		Help: "Number of currently connected clients per sharing technology.",
	}, []string{"type"})

	clientConnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tether_client_connects_total",
		Help: "Counter of client connect events.",
	}, []string{"type"})

	clientDisconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tether_client_disconnects_total",
		Help: "Counter of client disconnect events.",
	}, []string{"type"})
}

func (m *Metrics) start() error {
	once.Do(func() {
		define()

		prometheus.MustRegister(connectedClients)
		prometheus.MustRegister(clientConnects)
		prometheus.MustRegister(clientDisconnects)

		http.Handle(m.path, promhttp.Handler())
		go func() {
			err := http.ListenAndServe(m.addr, nil)
			if err != nil {
				log.Errorf("failed to serve metrics: %v", err)
			}
		}()
	})

	return nil
}

// Package coordinator drives the connected clients tracker. It
// periodically polls all presence sources, feeds the tracker and
// publishes connect and disconnect events. All tracker access is
// serialized through a single goroutine
package coordinator

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
	"github.com/nexttether/nexttether/core/log"
	"github.com/nexttether/nexttether/core/presence"
	"github.com/nexttether/nexttether/core/tracker"
)

// DefaultInterval is the default refresh interval of the coordinator
const DefaultInterval = 10 * time.Second

// Coordinator polls lease and presence sources and keeps the
// connected clients list up to date
type Coordinator struct {
	l        log.Logger
	tracker  *tracker.Tracker
	interval time.Duration

	rw       sync.RWMutex
	sources  []tracker.LeaseSource
	presence []presence.Source
	last     []client.Tethered

	kick chan struct{}
	stop chan struct{}
	done chan struct{}

	started   bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// Option configures a coordinator
type Option func(c *Coordinator)

// WithInterval sets the refresh interval
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		c.interval = d
	}
}

// WithClock sets the time base used for lease expiry
func WithClock(clk tracker.Clock) Option {
	return func(c *Coordinator) {
		c.tracker = tracker.NewWithClock(clk)
	}
}

// WithLogger sets the logger used by the coordinator
func WithLogger(l log.Logger) Option {
	return func(c *Coordinator) {
		c.l = l
	}
}

// New creates a new coordinator
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		l:        log.Default(),
		tracker:  tracker.New(),
		interval: DefaultInterval,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddLeaseSource registers a new downstream lease source
func (c *Coordinator) AddLeaseSource(src tracker.LeaseSource) {
	c.rw.Lock()
	defer c.rw.Unlock()

	c.sources = append(c.sources, src)
}

// AddPresenceSource registers a new link-layer presence source
func (c *Coordinator) AddPresenceSource(src presence.Source) {
	c.rw.Lock()
	defer c.rw.Unlock()

	c.presence = append(c.presence, src)
}

// Start launches the coordinator goroutine. It is safe to call Start
// multiple times, only the first call has an effect
func (c *Coordinator) Start() {
	c.startOnce.Do(func() {
		c.started = true
		go c.run()
	})
}

// Stop terminates the coordinator goroutine and waits for it to
// finish
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})

	if c.started {
		<-c.done
	}
}

// Kick requests an immediate refresh. It never blocks
func (c *Coordinator) Kick() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Clients returns the connected clients list computed by the most
// recent refresh
func (c *Coordinator) Clients() []client.Tethered {
	c.rw.RLock()
	defer c.rw.RUnlock()

	clients := make([]client.Tethered, len(c.last))
	copy(clients, c.last)

	return clients
}

// Refresh synchronously recomputes the connected clients list. It is
// exported for the coordinator goroutine and for tests, production
// code should use Kick instead
func (c *Coordinator) Refresh(ctx context.Context) []client.Tethered {
	c.rw.RLock()
	sources := make([]tracker.LeaseSource, len(c.sources))
	copy(sources, c.sources)
	presenceSources := make([]presence.Source, len(c.presence))
	copy(presenceSources, c.presence)
	previous := c.last
	c.rw.RUnlock()

	stations := c.collectStations(ctx, presenceSources)

	current := c.tracker.UpdateConnectedClients(sources, stations)

	c.rw.Lock()
	c.last = current
	c.rw.Unlock()

	c.publish(previous, current)

	return current
}

// collectStations queries all presence sources and merges their
// station lists. It returns nil if no source could provide any
// link-layer information this cycle
func (c *Coordinator) collectStations(ctx context.Context, sources []presence.Source) []net.HardwareAddr {
	if len(sources) == 0 {
		return nil
	}

	var (
		stations []net.HardwareAddr
		gotInfo  bool
	)

	for _, src := range sources {
		macs, err := src.Stations(ctx)
		if err != nil {
			c.l.WithError(err).Warn("failed to query presence source")
			continue
		}

		gotInfo = true
		stations = append(stations, macs...)
	}

	if !gotInfo {
		return nil
	}

	if stations == nil {
		stations = []net.HardwareAddr{}
	}

	return stations
}

func (c *Coordinator) publish(previous, current []client.Tethered) {
	prevByKey := make(map[string]*client.Tethered, len(previous))
	for i := range previous {
		prevByKey[previous[i].Key()] = &previous[i]
	}

	curSet := make(map[string]struct{}, len(current))
	changed := len(previous) != len(current)

	for i := range current {
		key := current[i].Key()
		curSet[key] = struct{}{}

		prev, ok := prevByKey[key]
		if !ok {
			changed = true

			c.l.WithFields(log.Fields{
				"mac":  key,
				"type": current[i].Type.String(),
			}).Info("client connected")
			events.EmitClientEvent(events.EventClientConnected, current[i].Clone())

			continue
		}

		// a known client with a different address list still counts as
		// a change of the connected clients list
		if !sameAddresses(prev.Addresses, current[i].Addresses) {
			changed = true
		}
	}

	for i := range previous {
		if _, ok := curSet[previous[i].Key()]; !ok {
			changed = true

			c.l.WithField("mac", previous[i].Key()).Info("client disconnected")
			events.EmitClientEvent(events.EventClientDisconnected, previous[i].Clone())
		}
	}

	if changed {
		events.EmitClientsChanged(current)
	}
}

func sameAddresses(a, b []client.AddressInfo) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Address.Equal(b[i].Address) {
			return false
		}
		if a[i].Hostname != b[i].Hostname {
			return false
		}
		if !a[i].Expires.Equal(b[i].Expires) {
			return false
		}
	}

	return true
}

func (c *Coordinator) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case <-c.stop:
			return
		case <-c.kick:
		case <-ticker.C:
		}

		c.Refresh(ctx)
	}
}

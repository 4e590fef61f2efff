// Package lua implements the lua directive that invokes user provided
// lua callbacks for client connect and disconnect events. Scripts may
// define the global functions onconnect(client) and ondisconnect(client)
package lua

import (
	"io"
	"os"
	"sync"

	"github.com/caddyserver/caddy"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/nexttether/nexttether/core/client"
	"github.com/nexttether/nexttether/core/events"
	"github.com/nexttether/nexttether/core/log"
)

const defaultQueueSize = 64

type (
	// settings may be declared by the script in a global settings
	// table
	settings struct {
		QueueSize int
	}

	luaEvent struct {
		event caddy.EventName
		c     *client.Tethered
	}

	luaPlugin struct {
		vm    *lua.LState
		queue chan luaEvent
		quit  chan struct{}
		done  chan struct{}
		l     log.Logger

		closeOnce sync.Once
	}
)

// Name returns "lua"
func (p *luaPlugin) Name() string {
	return "lua"
}

func newFromFile(path string) (*luaPlugin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return newFromReader(f, path)
}

func newFromReader(r io.Reader, name string) (*luaPlugin, error) {
	vm := lua.NewState()

	fn, err := vm.Load(r, name)
	if err != nil {
		vm.Close()
		return nil, err
	}

	vm.Push(fn)
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return nil, err
	}

	cfg, err := readSettings(vm)
	if err != nil {
		vm.Close()
		return nil, err
	}

	p := &luaPlugin{
		vm:    vm,
		queue: make(chan luaEvent, cfg.QueueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	return p, nil
}

func readSettings(vm *lua.LState) (settings, error) {
	s := settings{
		QueueSize: defaultQueueSize,
	}

	v := vm.GetGlobal("settings")
	if tbl, ok := v.(*lua.LTable); ok {
		if err := gluamapper.Map(tbl, &s); err != nil {
			return s, err
		}

		if s.QueueSize <= 0 {
			s.QueueSize = defaultQueueSize
		}
	}

	return s, nil
}

// start launches the event loop. The lua VM is not safe for concurrent
// use so all callbacks are dispatched from a single goroutine
func (p *luaPlugin) start() {
	go func() {
		defer close(p.done)
		defer p.vm.Close()

		for {
			select {
			case <-p.quit:
				return
			case ev := <-p.queue:
				p.dispatch(ev)
			}
		}
	}()
}

// close stops the event loop and waits for it to finish. The queue
// channel itself is never closed, event hooks may still fire while
// the instance shuts down
func (p *luaPlugin) close() error {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	<-p.done

	return nil
}

func (p *luaPlugin) handleEvent(event caddy.EventName, c *client.Tethered) error {
	select {
	case <-p.quit:
		// shutting down, drop the event
	case p.queue <- luaEvent{event: event, c: c.Clone()}:
	default:
		p.l.Warnf("lua event queue is full, dropping %s for %s", event, c.HwAddr)
	}

	return nil
}

func (p *luaPlugin) dispatch(ev luaEvent) {
	var fnName string

	switch ev.event {
	case events.EventClientConnected:
		fnName = "onconnect"
	case events.EventClientDisconnected:
		fnName = "ondisconnect"
	default:
		return
	}

	fn := p.vm.GetGlobal(fnName)
	if fn == lua.LNil {
		return
	}

	err := p.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, clientToLua(p.vm, ev.c))

	if err != nil {
		p.l.Errorf("lua callback %s failed: %s", fnName, err.Error())
	}
}

func clientToLua(vm *lua.LState, c *client.Tethered) *lua.LTable {
	tbl := vm.NewTable()
	tbl.RawSetString("mac", lua.LString(c.HwAddr.String()))
	tbl.RawSetString("type", lua.LString(c.Type.String()))
	tbl.RawSetString("hostname", lua.LString(c.Hostname()))

	addrs := vm.NewTable()
	for idx := range c.Addresses {
		addrs.Append(lua.LString(c.Addresses[idx].Address.String()))
	}
	tbl.RawSetString("addresses", addrs)

	return tbl
}

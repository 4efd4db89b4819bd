// Package server exposes a running simulation to websocket viewers: it
// broadcasts binary Frame messages on a fixed cadence and accepts Control
// messages to pause, resume, or reset the run.
package server

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"contagion/internal/sim"
	"contagion/internal/wire"
)

// Options tunes the live stream.
type Options struct {
	// Interval is the wall-clock delay between broadcast frames.
	Interval time.Duration

	// StepsPerFrame is how many simulation steps each frame advances.
	StepsPerFrame int

	// Seed initialises the run's random source; zero means time-seeded.
	Seed int64
}

type hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// send writes to one connection under the hub lock. gorilla/websocket
// permits at most one concurrent writer per connection, so every write has
// to serialise against broadcast.
func (h *hub) send(conn *websocket.Conn, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, payload)
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			log.Printf("failed to write to client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Server drives one engine and streams its state to any number of viewers.
type Server struct {
	cfg  sim.Config
	opts Options
	hub  *hub

	mu      sync.Mutex
	engine  *sim.Engine
	initial []sim.Agent
	seeds   *rand.Rand
	paused  bool
}

// New validates the configuration, generates the run's initial conditions,
// and builds the engine a Run loop will drive.
func New(cfg sim.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Interval <= 0 {
		opts.Interval = 50 * time.Millisecond
	}
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = 1
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	seeds := rand.New(rand.NewSource(opts.Seed))
	initial := sim.GenerateInitial(cfg, seeds)
	engine, err := sim.NewFromInitial(cfg, initial, rand.New(rand.NewSource(seeds.Int63())))
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		opts:    opts,
		hub:     newHub(),
		engine:  engine,
		initial: initial,
		seeds:   seeds,
	}, nil
}

// Run advances the simulation and broadcasts a frame every interval until the
// context is cancelled. Pausing stops the clock but keeps clients connected.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, advanced := s.step()
			if advanced {
				s.hub.broadcast(payload)
			}
		}
	}
}

func (s *Server) step() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil, false
	}
	for i := 0; i < s.opts.StepsPerFrame; i++ {
		s.engine.Advance()
	}
	return s.frameLocked(), true
}

func (s *Server) frameLocked() []byte {
	agents := s.engine.Agents()
	counts := s.engine.Counts()
	f := &wire.Frame{
		Time:        s.engine.Time(),
		X:           make([]float64, len(agents)),
		Y:           make([]float64, len(agents)),
		Health:      make([]uint32, len(agents)),
		Susceptible: uint32(counts.S),
		Infected:    uint32(counts.I),
		Recovered:   uint32(counts.R),
	}
	for i, a := range agents {
		f.X[i] = a.X
		f.Y[i] = a.Y
		f.Health[i] = uint32(a.Health)
	}
	return wire.MarshalFrame(f)
}

// Frame returns the current state as an encoded Frame message.
func (s *Server) Frame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Server) applyControl(c *wire.Control) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Reset {
		engine, err := sim.NewFromInitial(s.cfg, s.initial, rand.New(rand.NewSource(s.seeds.Int63())))
		if err != nil {
			return err
		}
		s.engine = engine
		log.Printf("run reset to initial conditions")
	}
	if s.paused != c.Paused {
		s.paused = c.Paused
		log.Printf("run paused=%v", s.paused)
	}
	return nil
}

// Handler upgrades viewers to websocket, sends them the current frame
// immediately, and applies any Control messages they send.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}
		s.hub.add(conn)
		defer s.hub.remove(conn)

		if err := s.hub.send(conn, s.Frame()); err != nil {
			log.Printf("failed to send initial frame: %v", err)
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("live stream read error: %v", err)
				return
			}

			control, err := wire.UnmarshalControl(data)
			if err != nil {
				log.Printf("unable to decode control message: %v", err)
				continue
			}
			if err := s.applyControl(control); err != nil {
				log.Printf("control rejected: %v", err)
				continue
			}
			s.hub.broadcast(s.Frame())
		}
	}
}

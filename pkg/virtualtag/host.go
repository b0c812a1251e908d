package virtualtag

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
	"github.com/google/uuid"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/version"
)

// Host errors.
var (
	// ErrInvalidConfig indicates an invalid host or reader configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAlreadyStarted indicates a second Start on a running host.
	ErrAlreadyStarted = errors.New("host already started")
)

// Advertiser announces a virtual tag on the local network. The default
// implementation registers an mDNS service; tests inject their own.
type Advertiser interface {
	// Advertise registers the service and keeps announcing it until
	// Shutdown.
	Advertise(instance string, port int, txt []string) error

	// Shutdown withdraws the announcement. Safe to call when nothing is
	// advertised.
	Shutdown()
}

// mdnsAdvertiser announces over zeroconf.
type mdnsAdvertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

func (a *mdnsAdvertiser) Advertise(instance string, port int, txt []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", ServiceType, err)
	}
	a.server = server
	return nil
}

func (a *mdnsAdvertiser) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// HostConfig configures a virtual tag host.
type HostConfig struct {
	// InstanceName is the mDNS instance name. Empty derives a unique
	// "tapmeet-tag-…" name.
	InstanceName string

	// Port to listen on. Zero picks an ephemeral port.
	Port int

	// Capability the virtual tag reports.
	Capability tag.Capability

	// Payload is the initial NDEF image. Nil hosts an empty tag.
	Payload []byte

	// Advertiser overrides network announcement (optional).
	Advertiser Advertiser

	// Logger receives host events (optional).
	Logger log.Logger
}

// Validate checks the configuration.
func (c *HostConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	switch c.Capability {
	case tag.CapabilityNone, tag.CapabilityReadOnly, tag.CapabilityReadWrite:
	default:
		return fmt.Errorf("%w: unknown capability %d", ErrInvalidConfig, c.Capability)
	}
	// The read reply carries a status byte ahead of the image.
	if len(c.Payload) > MaxFrameSize-1 {
		return fmt.Errorf("%w: payload %d bytes exceeds frame limit", ErrInvalidConfig, len(c.Payload))
	}
	return nil
}

// DefaultHostConfig returns a read-write host on an ephemeral port.
func DefaultHostConfig() HostConfig {
	return HostConfig{Capability: tag.CapabilityReadWrite}
}

// Host serves one virtual tag image over TCP and announces it via the
// configured Advertiser. All methods are safe for concurrent use.
type Host struct {
	cfg        HostConfig
	instance   string
	logger     log.Logger
	advertiser Advertiser

	mu       sync.Mutex
	started  bool
	listener net.Listener
	payload  []byte
	conns    map[net.Conn]struct{}
}

// NewHost creates a host serving the configured tag image.
func NewHost(cfg HostConfig) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	instance := cfg.InstanceName
	if instance == "" {
		instance = "tapmeet-tag-" + uuid.NewString()[:8]
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	advertiser := cfg.Advertiser
	if advertiser == nil {
		advertiser = &mdnsAdvertiser{}
	}
	return &Host{
		cfg:        cfg,
		instance:   instance,
		logger:     logger,
		advertiser: advertiser,
		payload:    append([]byte(nil), cfg.Payload...),
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// Instance returns the announced instance name.
func (h *Host) Instance() string {
	return h.instance
}

// Addr returns the listen address, or empty before Start.
func (h *Host) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Payload returns a copy of the current tag image.
func (h *Host) Payload() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.payload...)
}

// Start listens and begins announcing the tag. The host stops when ctx
// ends or Stop is called.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return ErrAlreadyStarted
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", h.cfg.Port))
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("listen: %w", err)
	}
	h.listener = listener
	h.started = true
	h.mu.Unlock()

	port := listener.Addr().(*net.TCPAddr).Port
	txt := []string{
		TXTVersionKey + "=" + version.Current,
		TXTCapabilityKey + "=" + strconv.Itoa(int(h.cfg.Capability)),
	}
	if err := h.advertiser.Advertise(h.instance, port, txt); err != nil {
		listener.Close()
		h.mu.Lock()
		h.started = false
		h.listener = nil
		h.mu.Unlock()
		return err
	}

	go h.serve()
	context.AfterFunc(ctx, h.Stop)
	return nil
}

// Stop withdraws the announcement and closes the listener and all
// connections. Stop is idempotent.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	listener := h.listener
	h.listener = nil
	conns := make([]net.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	h.advertiser.Shutdown()
	if listener != nil {
		listener.Close()
	}
	for _, conn := range conns {
		conn.Close()
	}
}

func (h *Host) serve() {
	h.mu.Lock()
	listener := h.listener
	h.mu.Unlock()
	if listener == nil {
		return
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		h.mu.Lock()
		if !h.started {
			h.mu.Unlock()
			conn.Close()
			return
		}
		h.conns[conn] = struct{}{}
		h.mu.Unlock()
		go h.handle(conn)
	}
}

// handle serves one reader connection until it closes.
func (h *Host) handle(conn net.Conn) {
	defer func() {
		conn.Close()
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	for {
		frame, err := readFrame(conn)
		if err != nil {
			return
		}
		if err := writeFrame(conn, h.dispatch(frame)); err != nil {
			return
		}
	}
}

// dispatch answers one command frame. Frames are never empty here;
// readFrame rejects those.
func (h *Host) dispatch(frame []byte) []byte {
	switch frame[0] {
	case CmdCapability:
		return []byte{StatusOK, byte(h.cfg.Capability)}

	case CmdRead:
		if !h.cfg.Capability.SupportsRead() {
			return []byte{StatusDenied}
		}
		h.mu.Lock()
		image := append([]byte(nil), h.payload...)
		h.mu.Unlock()
		if len(image) == 0 {
			return []byte{StatusEmpty}
		}
		h.logTag(image, false)
		return append([]byte{StatusOK}, image...)

	case CmdWrite:
		if !h.cfg.Capability.SupportsWrite() {
			return []byte{StatusDenied}
		}
		image := append([]byte(nil), frame[1:]...)
		h.mu.Lock()
		h.payload = image
		h.mu.Unlock()
		h.logTag(image, true)
		return []byte{StatusOK}

	default:
		return []byte{StatusDenied}
	}
}

func (h *Host) logTag(image []byte, write bool) {
	event := log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceEmulator,
		Category:  log.CategoryTag,
		Tag:       &log.TagEvent{Size: len(image), Write: write},
	}
	if p, err := tag.DecodePayload(image); err == nil {
		event.SharerID = p.MemberID
		event.Tag.MemberID = p.MemberID
		event.Tag.HasName = p.DisplayName != ""
	}
	h.logger.Log(event)
}

package virtualtag

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/version"
)

// DefaultBrowseTimeout bounds one discovery pass.
const DefaultBrowseTimeout = 2 * time.Second

// Endpoint is one discovered virtual tag.
type Endpoint struct {
	// Instance is the announced instance name.
	Instance string

	// Addr is the dialable "host:port" address.
	Addr string

	// Version is the announced payload schema version (may be empty).
	Version string
}

// Finder locates virtual tags on the network. The default implementation
// browses mDNS; tests inject their own.
type Finder interface {
	// Find returns the distinct endpoints seen until ctx ends.
	Find(ctx context.Context) ([]Endpoint, error)
}

// mdnsFinder browses zeroconf for virtual tags.
type mdnsFinder struct{}

func (mdnsFinder) Find(ctx context.Context) ([]Endpoint, error) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	seen := make(map[string]Endpoint)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if ep, ok := entryToEndpoint(entry); ok {
					seen[ep.Instance] = ep
				}
			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				delete(seen, entry.Instance)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Browse blocks until ctx ends; expiry is the normal exit.
	err := zeroconf.Browse(ctx, ServiceType, Domain, entries, removed)
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("browse %s: %w", ServiceType, err)
	}
	<-done

	endpoints := make([]Endpoint, 0, len(seen))
	for _, ep := range seen {
		endpoints = append(endpoints, ep)
	}
	sort.Slice(endpoints, func(i, j int) bool {
		return endpoints[i].Instance < endpoints[j].Instance
	})
	return endpoints, nil
}

// entryToEndpoint maps an mDNS entry to a dialable endpoint. Entries
// without any usable address are skipped.
func entryToEndpoint(entry *zeroconf.ServiceEntry) (Endpoint, bool) {
	if entry == nil {
		return Endpoint{}, false
	}
	var host string
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	case entry.HostName != "":
		host = strings.TrimSuffix(entry.HostName, ".")
	default:
		return Endpoint{}, false
	}
	ep := Endpoint{
		Instance: entry.Instance,
		Addr:     net.JoinHostPort(host, strconv.Itoa(entry.Port)),
	}
	for _, kv := range entry.Text {
		if v, ok := strings.CutPrefix(kv, TXTVersionKey+"="); ok {
			ep.Version = v
		}
	}
	return ep, true
}

// ReaderConfig configures a virtual tag reader.
type ReaderConfig struct {
	// Addr dials a known host directly and skips discovery (optional).
	Addr string

	// BrowseTimeout bounds one discovery pass. Zero uses
	// DefaultBrowseTimeout.
	BrowseTimeout time.Duration

	// Finder overrides endpoint discovery (optional).
	Finder Finder

	// Logger receives reader events (optional).
	Logger log.Logger
}

// Validate checks the configuration.
func (c *ReaderConfig) Validate() error {
	if c.BrowseTimeout < 0 {
		return fmt.Errorf("%w: negative browse timeout", ErrInvalidConfig)
	}
	return nil
}

// DefaultReaderConfig returns a discovering reader configuration.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{BrowseTimeout: DefaultBrowseTimeout}
}

// Reader drives a virtual tag over TCP. It reports the same hardware
// conditions an NFC field would: no tag discovered maps to tag.ErrNoTag
// and more than one to tag.ErrMultipleTags.
type Reader struct {
	cfg    ReaderConfig
	finder Finder
	logger log.Logger
	ours   version.SpecVersion

	mu   sync.Mutex
	conn net.Conn
}

// Reader stands in for the NFC hardware.
var _ tag.ReaderWriter = (*Reader)(nil)

// NewReader creates a reader. With cfg.Addr set it dials that host
// directly; otherwise Connect discovers tags on the local network.
func NewReader(cfg ReaderConfig) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	finder := cfg.Finder
	if finder == nil {
		finder = mdnsFinder{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	ours, err := version.Parse(version.Current)
	if err != nil {
		return nil, fmt.Errorf("parse own version: %w", err)
	}
	return &Reader{
		cfg:    cfg,
		finder: finder,
		logger: logger,
		ours:   ours,
	}, nil
}

// Connect locates exactly one virtual tag and dials it.
func (r *Reader) Connect(ctx context.Context) error {
	addr := r.cfg.Addr
	if addr == "" {
		found, err := r.discover(ctx)
		if err != nil {
			r.logFailure("discover", err)
			return err
		}
		addr = found
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logFailure("dial", err)
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	r.mu.Lock()
	old := r.conn
	r.conn = conn
	r.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// discover runs one browse pass and insists on exactly one compatible tag.
func (r *Reader) discover(ctx context.Context) (string, error) {
	timeout := r.cfg.BrowseTimeout
	if timeout == 0 {
		timeout = DefaultBrowseTimeout
	}
	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoints, err := r.finder.Find(browseCtx)
	if err != nil {
		return "", fmt.Errorf("find tags: %w", err)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var usable []Endpoint
	for _, ep := range endpoints {
		if r.compatible(ep) {
			usable = append(usable, ep)
		}
	}
	switch len(usable) {
	case 0:
		return "", tag.ErrNoTag
	case 1:
		return usable[0].Addr, nil
	default:
		return "", tag.ErrMultipleTags
	}
}

// compatible rejects endpoints announcing a different major version.
// Endpoints announcing nothing parseable are accepted.
func (r *Reader) compatible(ep Endpoint) bool {
	if ep.Version == "" {
		return true
	}
	theirs, err := version.Parse(ep.Version)
	if err != nil {
		return true
	}
	return r.ours.Compatible(theirs)
}

// Capability queries what the connected tag supports.
func (r *Reader) Capability(ctx context.Context) (tag.Capability, error) {
	reply, err := r.roundTrip(ctx, []byte{CmdCapability})
	if err != nil {
		return tag.CapabilityNone, err
	}
	if len(reply) < 2 || reply[0] != StatusOK {
		return tag.CapabilityNone, ErrBadReply
	}
	return tag.Capability(reply[1]), nil
}

// ReadMessage reads the tag image. An empty tag yields nil bytes and no
// error, matching what NDEF hardware reports for a blank tag.
func (r *Reader) ReadMessage(ctx context.Context) ([]byte, error) {
	reply, err := r.roundTrip(ctx, []byte{CmdRead})
	if err != nil {
		return nil, err
	}
	switch reply[0] {
	case StatusOK:
		return reply[1:], nil
	case StatusEmpty:
		return nil, nil
	case StatusDenied:
		return nil, ErrDenied
	default:
		return nil, ErrBadReply
	}
}

// WriteMessage replaces the tag image.
func (r *Reader) WriteMessage(ctx context.Context, data []byte) error {
	frame := make([]byte, 0, len(data)+1)
	frame = append(frame, CmdWrite)
	frame = append(frame, data...)
	reply, err := r.roundTrip(ctx, frame)
	if err != nil {
		return err
	}
	switch reply[0] {
	case StatusOK:
		return nil
	case StatusDenied:
		return ErrDenied
	default:
		return ErrBadReply
	}
}

// Close drops the connection. Safe to call repeatedly.
func (r *Reader) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// roundTrip sends one command frame and reads one reply frame. The
// context bounds the whole exchange; replies are never empty because
// readFrame rejects empty frames.
func (r *Reader) roundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := writeFrame(conn, frame); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("send command: %w", err)
	}
	reply, err := readFrame(conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}

func (r *Reader) logFailure(op string, err error) {
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceEmulator,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceEmulator,
			Message: err.Error(),
			Context: op,
		},
	})
}

package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/internal/util"
	"github.com/hupe1980/wcpairing/logging"
)

const defaultWriteTimeout = 10 * time.Second

// WebSocketOptions configures a WebSocketRelay.
type WebSocketOptions struct {
	// ProjectID is sent as a bearer token when set.
	ProjectID string
	// Codec selects the frame encoding. Defaults to JSONCodec.
	Codec Codec
	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration
	// DeletionBuffer sizes the Deletions channel.
	DeletionBuffer int
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// Logger receives connection level traces.
	Logger logging.Logger
}

// WebSocketRelay is a core.Relay talking JSON-RPC to a relay server over a
// single websocket connection. Calls may be issued concurrently; responses
// are matched to callers by request id.
type WebSocketRelay struct {
	conn   *websocket.Conn
	codec  Codec
	logger logging.Logger

	writeTimeout time.Duration
	writeMu      sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Message
	err     error

	deletions chan core.RemoteDeletion
	closed    chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}
}

// Dial connects to the relay server at rawURL and starts the read loop.
func Dial(ctx context.Context, rawURL string, optFns ...func(o *WebSocketOptions)) (*WebSocketRelay, error) {
	opts := WebSocketOptions{
		Codec:          JSONCodec{},
		WriteTimeout:   defaultWriteTimeout,
		DeletionBuffer: 16,
		Dialer:         websocket.DefaultDialer,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec{}
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	if id := strings.TrimSpace(opts.ProjectID); id != "" {
		header.Set("Authorization", "Bearer "+id)
	}

	conn, _, err := opts.Dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial relay websocket: %w", err)
	}

	r := newWebSocketRelay(conn, opts)
	opts.Logger.Debug("relay connected", "url", rawURL, "codec", opts.Codec.Name())

	return r, nil
}

func newWebSocketRelay(conn *websocket.Conn, opts WebSocketOptions) *WebSocketRelay {
	r := &WebSocketRelay{
		conn:         conn,
		codec:        opts.Codec,
		logger:       opts.Logger,
		writeTimeout: opts.WriteTimeout,
		pending:      make(map[string]chan Message),
		deletions:    make(chan core.RemoteDeletion, opts.DeletionBuffer),
		closed:       make(chan struct{}),
		readDone:     make(chan struct{}),
	}
	go r.readLoop()
	return r
}

// Subscribe asks the relay to deliver messages published on topic.
func (r *WebSocketRelay) Subscribe(ctx context.Context, topic string) error {
	_, err := r.call(ctx, MethodSubscribe, &Params{Topic: topic})
	return err
}

// Unsubscribe drops the subscription on topic.
func (r *WebSocketRelay) Unsubscribe(ctx context.Context, topic string) error {
	_, err := r.call(ctx, MethodUnsubscribe, &Params{Topic: topic})
	return err
}

// Activate sends the pairing activation and returns the peer metadata.
func (r *WebSocketRelay) Activate(ctx context.Context, p core.Proposal) (*core.AppMetadata, error) {
	params := &Params{
		Topic:   p.Topic,
		Relay:   &p.Relay,
		SymKey:  p.SymKey,
		Methods: p.Methods,
	}
	if !p.Expiry.IsZero() {
		params.Expiry = p.Expiry.Unix()
	}
	res, err := r.call(ctx, MethodActivate, params)
	if err != nil {
		return nil, err
	}
	return res.Metadata, nil
}

// Delete signals a locally initiated teardown.
func (r *WebSocketRelay) Delete(ctx context.Context, topic string, reason core.Reason) error {
	_, err := r.call(ctx, MethodDelete, &Params{Topic: topic, Reason: &reason})
	return err
}

// Ping checks the peer is reachable on topic.
func (r *WebSocketRelay) Ping(ctx context.Context, topic string) error {
	_, err := r.call(ctx, MethodPing, &Params{Topic: topic})
	return err
}

// Deletions reports wc_pairingDelete requests pushed by the server. It is
// closed when the connection ends.
func (r *WebSocketRelay) Deletions() <-chan core.RemoteDeletion { return r.deletions }

// Close shuts the connection down and waits for the read loop to exit.
func (r *WebSocketRelay) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.closed)
		r.writeMu.Lock()
		_ = r.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	<-r.readDone
	return err
}

func (r *WebSocketRelay) call(ctx context.Context, method string, params *Params) (*Result, error) {
	id := util.NewID()
	respCh := make(chan Message, 1)

	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return nil, err
	}
	r.pending[id] = respCh
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	if err := r.send(newRequest(id, method, params)); err != nil {
		return nil, err
	}

	select {
	case resp, ok := <-respCh:
		if !ok {
			return nil, r.connErr()
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		if resp.Result == nil {
			return &Result{}, nil
		}
		return resp.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.closed:
		return nil, ErrRelayClosed
	}
}

func (r *WebSocketRelay) send(msg Message) error {
	payload, err := r.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Method, err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		return err
	}
	return r.conn.WriteMessage(r.codec.FrameType(), payload)
}

func (r *WebSocketRelay) readLoop() {
	defer close(r.readDone)
	defer close(r.deletions)

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			r.fail(err)
			return
		}

		var msg Message
		if err := r.codec.Unmarshal(data, &msg); err != nil {
			r.logger.Warn("relay dropped undecodable frame", "error", err)
			continue
		}

		if msg.IsRequest() {
			r.handleRequest(msg)
			continue
		}

		r.mu.Lock()
		ch, ok := r.pending[msg.ID]
		r.mu.Unlock()
		if !ok {
			r.logger.Debug("relay response without caller", "id", msg.ID)
			continue
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

func (r *WebSocketRelay) handleRequest(msg Message) {
	switch msg.Method {
	case MethodDelete:
		if msg.Params == nil {
			return
		}
		d := core.RemoteDeletion{Topic: msg.Params.Topic}
		if msg.Params.Reason != nil {
			d.Code = msg.Params.Reason.Code
			d.Message = msg.Params.Reason.Message
		}
		select {
		case r.deletions <- d:
		case <-r.closed:
			return
		}
	case MethodPing:
	default:
		r.logger.Debug("relay ignored request", "method", msg.Method)
		return
	}

	if err := r.send(newResponse(msg.ID, &Result{OK: true})); err != nil {
		r.logger.Warn("relay ack failed", "method", msg.Method, "error", err)
	}
}

// fail records the terminal error and releases every waiting caller.
func (r *WebSocketRelay) fail(err error) {
	select {
	case <-r.closed:
		err = ErrRelayClosed
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err == nil {
		r.err = err
	}
	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}

	if !errors.Is(err, ErrRelayClosed) {
		r.logger.Warn("relay connection lost", "error", err)
	}
}

func (r *WebSocketRelay) connErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		return ErrRelayClosed
	}
	return r.err
}

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"capital-shield/internal/domain"
)

// ExternalConfig configures the external engine client.
type ExternalConfig struct {
	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration
	// ReadTimeout is the per-request response deadline.
	ReadTimeout time.Duration
	// WriteTimeout is the per-request write deadline.
	WriteTimeout time.Duration
}

// DefaultExternalConfig returns the default client configuration.
func DefaultExternalConfig() ExternalConfig {
	return ExternalConfig{
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// signalRequest is the wire request sent per snapshot.
type signalRequest struct {
	AssetID   string    `json:"asset_id"`
	Timestamp int64     `json:"timestamp"`
	Closes    []float64 `json:"closes"`
}

// signalResponse is the wire response.
type signalResponse struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

// External delegates signal generation to an out-of-process engine over a
// websocket. Any transport or protocol failure is reported as a wrapped
// ErrEngineFault; the caller decides how to degrade (the simulation runner
// substitutes HOLD). The connection is established lazily and re-dialed
// after a failed request.
type External struct {
	endpoint string
	config   ExternalConfig

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewExternal creates an external engine client for the given ws:// endpoint.
func NewExternal(endpoint string, config *ExternalConfig) *External {
	cfg := DefaultExternalConfig()
	if config != nil {
		cfg = *config
	}
	return &External{endpoint: endpoint, config: cfg}
}

// Name returns the engine identifier.
func (e *External) Name() string { return "external" }

// GenerateSignal sends the snapshot to the external engine and parses the
// returned action. One request per call; requests are serialized.
func (e *External) GenerateSignal(ctx context.Context, snap Snapshot) (domain.ProposedTrade, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	conn, err := e.connect(ctx)
	if err != nil {
		return domain.ProposedTrade{}, fmt.Errorf("%w: connect: %v", ErrEngineFault, err)
	}

	req := signalRequest{
		AssetID:   snap.AssetID,
		Timestamp: snap.Timestamp,
		Closes:    snap.Closes,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.ProposedTrade{}, fmt.Errorf("%w: marshal request: %v", ErrEngineFault, err)
	}

	conn.SetWriteDeadline(time.Now().Add(e.config.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		e.drop()
		return domain.ProposedTrade{}, fmt.Errorf("%w: write: %v", ErrEngineFault, err)
	}

	conn.SetReadDeadline(time.Now().Add(e.config.ReadTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		e.drop()
		return domain.ProposedTrade{}, fmt.Errorf("%w: read: %v", ErrEngineFault, err)
	}

	var resp signalResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.ProposedTrade{}, fmt.Errorf("%w: unmarshal response: %v", ErrEngineFault, err)
	}

	trade := domain.ProposedTrade{
		AssetID:          snap.AssetID,
		Action:           domain.Action(resp.Action),
		Timestamp:        snap.Timestamp,
		SignalConfidence: resp.Confidence,
	}
	if err := trade.Validate(); err != nil {
		return domain.ProposedTrade{}, fmt.Errorf("%w: invalid response: %v", ErrEngineFault, err)
	}

	return trade, nil
}

// Close closes the underlying connection if open.
func (e *External) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

// connect dials the endpoint if no connection is held. Caller holds e.mu.
func (e *External) connect(ctx context.Context) (*websocket.Conn, error) {
	if e.conn != nil {
		return e.conn, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, e.config.DialTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, e.endpoint, nil)
	if err != nil {
		return nil, err
	}
	e.conn = conn
	return conn, nil
}

// drop discards a connection after a transport error. Caller holds e.mu.
func (e *External) drop() {
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
}

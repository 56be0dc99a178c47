package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	drepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by the Polymarket CLOB market
// channel.
type Client struct {
	websocketURL   string
	assetIDs       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new CLOB MarketStream.
func New(websocketURL string, assetIDs []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		websocketURL:   websocketURL,
		assetIDs:       assetIDs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("clob connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("clob: connected")
	return nil
}

// Subscribe subscribes to the market channel for the configured assets.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("clob not connected")
	}
	msg := map[string]interface{}{
		"type":       "market",
		"assets_ids": c.assetIDs,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe market channel: %w", err)
	}
	log.Printf("clob: subscribed %d assets", len(c.assetIDs))
	return nil
}

// market-channel trade event; price and size arrive as decimal strings
type clobTrade struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"` // ms
}

// Read streams MarketTick events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.MarketTick, <-chan error) {
	ticks := make(chan *models.MarketTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("clob conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("clob read: %w", err)
					return
				}
				var events []clobTrade
				if err := json.Unmarshal(b, &events); err != nil {
					// ignore non-array frames (book snapshots, acks)
					continue
				}
				for _, e := range events {
					if e.EventType != "last_trade_price" {
						continue
					}
					tick, err := toTick(e)
					if err != nil {
						continue
					}
					select {
					case ticks <- tick:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return ticks, errs
}

func toTick(e clobTrade) (*models.MarketTick, error) {
	price, err := strconv.ParseFloat(e.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", e.Price, err)
	}
	size, err := strconv.ParseFloat(e.Size, 64)
	if err != nil {
		return nil, fmt.Errorf("parse size %q: %w", e.Size, err)
	}
	ms, err := strconv.ParseInt(e.Timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", e.Timestamp, err)
	}
	return &models.MarketTick{
		MarketID:  e.AssetID,
		Timestamp: ms / 1000,
		Price:     price,
		Size:      size,
	}, nil
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }

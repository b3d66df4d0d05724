package storerelay

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/eaindome/Ride-Booking-server/internal/models"
	"github.com/eaindome/Ride-Booking-server/internal/store"
)

// Client is a store.RideStore backed by a relay server in another
// process. Any number of requests may be outstanding at once; the reader
// goroutine routes each response to the waiter registered under its
// correlation id and drops anything it cannot match.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan response
	closed  bool
}

var _ store.RideStore = (*Client)(nil)

// Dial connects to a relay server, e.g. ws://storenode:7000/relay.
func Dial(url string, logger *slog.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("relay dial %s: %w", url, err)
	}
	c := &Client{conn: conn, logger: logger, pending: make(map[string]chan response)}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			c.failAll(err)
			return
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.CorrelationID]
		if ok {
			delete(c.pending, resp.CorrelationID)
		}
		c.mu.Unlock()
		if !ok {
			// stale or duplicate; the original caller gave up
			c.log().Warn("discarding unmatched relay response", "correlation_id", resp.CorrelationID)
			continue
		}
		ch <- resp
	}
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	req.CorrelationID = newCorrelationID()
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return response{}, errors.New("relay client closed")
	}
	c.pending[req.CorrelationID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.drop(req.CorrelationID)
		return response{}, fmt.Errorf("relay write: %w", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return response{}, errors.New("relay connection lost")
		}
		if resp.Err != "" {
			return response{}, decodeErr(resp.Err)
		}
		return resp, nil
	case <-ctx.Done():
		c.drop(req.CorrelationID)
		return response{}, ctx.Err()
	}
}

func (c *Client) drop(correlationID string) {
	c.mu.Lock()
	delete(c.pending, correlationID)
	c.mu.Unlock()
}

func (c *Client) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.log().Info("relay reader stopped", "error", err)
}

func (c *Client) Close() error {
	err := c.conn.Close()
	c.failAll(errors.New("client closed"))
	return err
}

func (c *Client) Get(ctx context.Context, id string) (models.Ride, error) {
	resp, err := c.call(ctx, request{Op: opGet, RideID: id})
	if err != nil {
		return models.Ride{}, err
	}
	if resp.Ride == nil {
		return models.Ride{}, errors.New("relay: empty get response")
	}
	return *resp.Ride, nil
}

func (c *Client) Insert(ctx context.Context, r models.Ride) error {
	_, err := c.call(ctx, request{Op: opInsert, Ride: &r})
	return err
}

func (c *Client) Update(ctx context.Context, r models.Ride) error {
	_, err := c.call(ctx, request{Op: opUpdate, Ride: &r})
	return err
}

func (c *Client) FindActive(ctx context.Context) ([]models.Ride, error) {
	resp, err := c.call(ctx, request{Op: opFindActive})
	if err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

func (c *Client) FindByRequester(ctx context.Context, riderID string) ([]models.Ride, error) {
	resp, err := c.call(ctx, request{Op: opFindByRequester, RiderID: riderID})
	if err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

func decodeErr(s string) error {
	switch s {
	case errNotFound:
		return store.ErrNotFound
	case errExists:
		return store.ErrExists
	default:
		return errors.New(s)
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func newCorrelationID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

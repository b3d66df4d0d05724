package storerelay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/eaindome/Ride-Booking-server/internal/store"
)

// Server exposes the canonical ride store to relay clients. Each request
// on a connection is served in its own goroutine so one slow operation
// never holds up the others; writes back to the socket are serialized.
type Server struct {
	Store    store.RideStore
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(s store.RideStore, logger *slog.Logger) *Server {
	return &Server{Store: s, Logger: logger}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger().Error("relay upgrade failed", "error", err)
		return
	}
	// the request context dies with this handler; store calls must not
	s.serveConn(context.Background(), conn)
}

func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()
	var writeMu sync.Mutex
	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger().Info("relay connection closed", "error", err)
			}
			return
		}
		go func(req request) {
			resp := s.handle(ctx, req)
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(resp); err != nil {
				s.logger().Error("relay write failed", "correlation_id", req.CorrelationID, "error", err)
			}
		}(req)
	}
}

func (s *Server) handle(ctx context.Context, req request) response {
	resp := response{CorrelationID: req.CorrelationID}
	switch req.Op {
	case opGet:
		r, err := s.Store.Get(ctx, req.RideID)
		if err != nil {
			resp.Err = encodeErr(err)
			return resp
		}
		resp.Ride = &r
	case opInsert:
		if req.Ride == nil {
			resp.Err = "missing ride"
			return resp
		}
		if err := s.Store.Insert(ctx, *req.Ride); err != nil {
			resp.Err = encodeErr(err)
		}
	case opUpdate:
		if req.Ride == nil {
			resp.Err = "missing ride"
			return resp
		}
		if err := s.Store.Update(ctx, *req.Ride); err != nil {
			resp.Err = encodeErr(err)
		}
	case opFindActive:
		rides, err := s.Store.FindActive(ctx)
		if err != nil {
			resp.Err = encodeErr(err)
			return resp
		}
		resp.Rides = rides
	case opFindByRequester:
		rides, err := s.Store.FindByRequester(ctx, req.RiderID)
		if err != nil {
			resp.Err = encodeErr(err)
			return resp
		}
		resp.Rides = rides
	default:
		resp.Err = "unknown op " + req.Op
	}
	return resp
}

func encodeErr(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errNotFound
	case errors.Is(err, store.ErrExists):
		return errExists
	default:
		return err.Error()
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

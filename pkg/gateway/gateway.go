package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/joripage/exchange-venue/pkg/logging"
	"github.com/joripage/exchange-venue/pkg/quote"
	"github.com/joripage/exchange-venue/pkg/venue"
)

type Config struct {
	QuoteTimeoutSeconds int `yaml:"quote_timeout_seconds"`
}

// Server is the websocket front door: it resolves sessions, forwards
// requests into the venue and pushes the venue's account updates back to
// whichever connection currently holds the account. It is the venue's
// Notifier; delivery is best effort and a slow or gone client just misses
// the message.
type Server struct {
	venue        *venue.Venue
	quotes       quote.Client
	log          *logging.Logger
	quoteTimeout time.Duration
	upgrader     websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*client // account id -> connection
}

func NewServer(v *venue.Venue, quotes quote.Client, log *logging.Logger, cfg Config) *Server {
	timeout := time.Duration(cfg.QuoteTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &Server{
		venue:        v,
		quotes:       quotes,
		log:          log,
		quoteTimeout: timeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*client),
	}
	v.SetNotifier(s)
	return s
}

// Handler returns the HTTP surface: a single websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Debugf("ws upgrade fail: %+v", err)
		return
	}

	c := &client{
		srv:  s,
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go c.writePump()
	c.readPump()
}

// Notify implements venue.Notifier. A full send buffer or a vanished
// connection drops the update; trades stand regardless.
func (s *Server) Notify(accountID string, update venue.AccountUpdate) {
	s.mu.RLock()
	c := s.conns[accountID]
	s.mu.RUnlock()
	if c == nil {
		return
	}
	c.enqueue(accountMessage{
		Type:    "account",
		Account: update.Account,
		Orders:  update.Orders,
		Message: update.Message,
	})
}

func (s *Server) bind(accountID string, c *client) {
	s.mu.Lock()
	s.conns[accountID] = c
	s.mu.Unlock()
}

func (s *Server) unbind(accountID string, c *client) {
	if accountID == "" {
		return
	}
	s.mu.Lock()
	if s.conns[accountID] == c {
		delete(s.conns, accountID)
	}
	s.mu.Unlock()
}

func (s *Server) dispatch(ctx context.Context, c *client, req clientRequest) {
	switch req.Op {
	case "hello":
		s.handleHello(ctx, c, req)
	case "lookup":
		s.handleLookup(ctx, c, req)
	case "order":
		s.handleOrder(ctx, c, req)
	case "cancel":
		s.handleCancel(ctx, c, req)
	default:
		c.problem(fmt.Sprintf("unknown op %q", req.Op))
	}
}

// handleHello resolves the presented token, creating a funded account on
// first contact, and binds the connection for notifications.
func (s *Server) handleHello(ctx context.Context, c *client, req clientRequest) {
	var message string
	account, ok := s.venue.Authenticate(req.AccountID)
	if !ok {
		account = s.venue.CreateAccount()
		message = fmt.Sprintf("Welcome! Your account has been created and contains $%s.", account.Cash.StringFixed(2))
		s.log.Info(ctx, "account created", zap.String("account_id", account.ID))
	}

	s.unbind(c.accountID, c)
	c.accountID = account.ID
	s.bind(account.ID, c)

	orders, err := s.venue.GetOrders(account.ID)
	if err != nil {
		c.problem(err.Error())
		return
	}
	c.enqueue(helloResponse{
		Type:    "hello",
		Account: account,
		Orders:  orders,
		Message: message,
	})
}

// handleLookup always pulls a fresh quote; the venue stores the profile and
// seeds the book when the symbol is new.
func (s *Server) handleLookup(ctx context.Context, c *client, req clientRequest) {
	if c.accountID == "" {
		c.problem("unauthorized")
		return
	}

	symbol := quote.NormalizeSymbol(req.Symbol)
	fetchCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()
	q, err := s.quotes.Fetch(fetchCtx, symbol)
	if err != nil {
		s.log.Warn(ctx, "quote fetch fail", zap.String("symbol", symbol), zap.Error(err))
		c.problem(err.Error())
		return
	}

	s.venue.SeedFromQuote(symbol, q)

	orders, err := s.venue.SymbolOrders(symbol)
	if err != nil {
		c.problem(err.Error())
		return
	}
	c.enqueue(lookupResponse{
		Type:    "lookup",
		Symbol:  symbol,
		Profile: *q,
		Orders:  orders,
		Trades:  s.venue.RecentTrades(symbol),
	})
}

func (s *Server) handleOrder(ctx context.Context, c *client, req clientRequest) {
	if c.accountID == "" || req.Order == nil {
		c.problem("unauthorized")
		return
	}

	placed, err := s.venue.PlaceOrder(c.accountID, venue.OrderRequest{
		Symbol: req.Order.Symbol,
		Side:   req.Order.Side,
		Shares: req.Order.Shares,
		Price:  req.Order.Price,
	})
	if err != nil {
		s.log.Debug(ctx, "order rejected", zap.Error(err))
		c.problem(err.Error())
		return
	}

	account, _ := s.venue.Authenticate(c.accountID)
	orders, _ := s.venue.GetOrders(c.accountID)
	c.enqueue(orderResponse{
		Type:    "order",
		Order:   placed,
		Account: account,
		Orders:  orders,
	})
}

func (s *Server) handleCancel(ctx context.Context, c *client, req clientRequest) {
	if c.accountID == "" {
		c.problem("unauthorized")
		return
	}

	if err := s.venue.CancelOrder(req.OrderID, c.accountID); err != nil {
		c.problem(err.Error())
		return
	}

	account, _ := s.venue.Authenticate(c.accountID)
	orders, _ := s.venue.GetOrders(c.accountID)
	c.enqueue(accountMessage{
		Type:    "account",
		Account: account,
		Orders:  orders,
		Message: "Order deleted",
	})
}

// requestContext tags each inbound message with a request id for log
// correlation.
func requestContext() context.Context {
	return logging.WithRequestID(context.Background(), uuid.New().String())
}

func mustMarshal(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("gateway: marshal response: %v", err))
	}
	return raw
}

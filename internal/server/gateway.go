package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shoukanhq/shoukan-server-go/internal/game"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// ClientFrame is one inbound websocket message.
type ClientFrame struct {
	Op       string `json:"op"`
	UserID   string `json:"user_id,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`

	MatchID    string `json:"match_id,omitempty"`
	OpponentID string `json:"opponent_id,omitempty"`

	Action     string `json:"action,omitempty"`
	HandIndex  int    `json:"hand_index,omitempty"`
	SlotIndex  int    `json:"slot_index,omitempty"`
	TargetSlot *int   `json:"target_slot,omitempty"`
	Defending  bool   `json:"defending,omitempty"`
	FaceDown   bool   `json:"face_down,omitempty"`
	NotCombat  bool   `json:"not_combat,omitempty"`
	Sacrifices []int  `json:"sacrifices,omitempty"`
}

// ServerFrame is one outbound websocket message.
type ServerFrame struct {
	Op      string          `json:"op"`
	MatchID string          `json:"match_id,omitempty"`
	Token   string          `json:"token,omitempty"`
	Error   string          `json:"error,omitempty"`
	Resend  bool            `json:"resend_hand,omitempty"`
	Lines   []string        `json:"lines,omitempty"`
	Image   string          `json:"image,omitempty"`
	View    *game.MatchView `json:"view,omitempty"`
	Hand    *game.HandView  `json:"hand,omitempty"`
}

// client is one connected player.
type client struct {
	userID string
	conn   *websocket.Conn
	send   chan ServerFrame

	mu      sync.Mutex
	matchID string
}

func (c *client) setMatch(id string) {
	c.mu.Lock()
	c.matchID = id
	c.mu.Unlock()
}

func (c *client) match() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}

// push queues a frame, dropping it if the client's buffer is full. A slow
// consumer must never stall the engine.
func (c *client) push(f ServerFrame) {
	select {
	case c.send <- f:
	default:
	}
}

// Gateway terminates websocket connections, authenticates players, forwards
// typed actions into the engine and fans engine output back out. It is the
// ChannelIO implementation behind the engine's render pipeline.
type Gateway struct {
	logger   *zap.Logger
	engine   *game.ShoukanEngine
	sessions *SessionManager
	locale   game.Localizer
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client // userID -> connection
}

// NewGateway creates the websocket gateway. The engine may be nil at
// construction and bound later with SetEngine, since the engine's channel
// port is the gateway itself.
func NewGateway(engine *game.ShoukanEngine, sessions *SessionManager, locale game.Localizer, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locale == nil {
		locale = game.KeyLocalizer{}
	}
	return &Gateway{
		logger:   logger,
		engine:   engine,
		sessions: sessions,
		locale:   locale,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// SetEngine binds the match engine after construction.
func (g *Gateway) SetEngine(engine *game.ShoukanEngine) { g.engine = engine }

// ServeWS upgrades an HTTP request into a gateway connection. The first frame
// must be an auth op carrying either credentials or a prior session token.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sess, err := g.handshake(r, conn)
	if err != nil {
		writeClose(conn, err.Error())
		conn.Close()
		return
	}

	c := &client{
		userID: sess.UserID,
		conn:   conn,
		send:   make(chan ServerFrame, sendBuffer),
	}
	g.register(c)
	c.push(ServerFrame{Op: "auth_ok", Token: sess.Token})

	// Reconnects pick their running match back up.
	if m, ok := g.engine.MatchFor(sess.UserID); ok {
		c.setMatch(m.ID())
		g.sendView(c, m)
		g.sendHand(sess.UserID, m)
	}

	go c.writeLoop()
	g.readLoop(c, sess)
}

// handshake reads and verifies the auth frame.
func (g *Gateway) handshake(r *http.Request, conn *websocket.Conn) (*Session, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		if sess, ok := g.sessions.Get(token); ok {
			return sess, nil
		}
	}

	var frame ClientFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return nil, errAuthRequired
	}
	if frame.Op != "auth" {
		return nil, errAuthRequired
	}
	if frame.Token != "" {
		if sess, ok := g.sessions.Get(frame.Token); ok {
			return sess, nil
		}
		return nil, errAuthRequired
	}
	return g.sessions.Authenticate(r.Context(), frame.UserID, frame.Password)
}

var errAuthRequired = &authError{}

type authError struct{}

func (*authError) Error() string { return "error/auth_required" }

func (g *Gateway) register(c *client) {
	g.mu.Lock()
	if old, ok := g.clients[c.userID]; ok {
		close(old.send)
		old.conn.Close()
	}
	g.clients[c.userID] = c
	g.mu.Unlock()
}

func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	if g.clients[c.userID] == c {
		delete(g.clients, c.userID)
	}
	g.mu.Unlock()
}

func (g *Gateway) readLoop(c *client, sess *Session) {
	defer func() {
		g.unregister(c)
		c.conn.Close()
	}()

	for {
		var frame ClientFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("client read error", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		g.handleFrame(c, sess, frame)
	}
}

func (g *Gateway) handleFrame(c *client, sess *Session, frame ClientFrame) {
	switch frame.Op {
	case "start":
		g.handleStart(c, sess, frame)
	case "action":
		g.handleAction(c, sess, frame)
	case "view":
		g.handleView(c)
	case "ping":
		c.push(ServerFrame{Op: "pong"})
	default:
		c.push(ServerFrame{Op: "error", Error: g.locale.Localize("error/unknown_op", frame.Op)})
	}
}

func (g *Gateway) handleStart(c *client, sess *Session, frame ClientFrame) {
	opponentID := frame.OpponentID
	opponentName := opponentID
	if opponentID == "" {
		// Practice match against yourself.
		opponentID = sess.UserID
		opponentName = sess.Name
	}

	m, err := g.engine.CreateMatch(context.Background(), sess.UserID, sess.Name, opponentID, opponentName)
	if err != nil {
		c.push(ServerFrame{Op: "error", Error: g.localizeErr(err)})
		return
	}
	c.setMatch(m.ID())
	g.mu.RLock()
	if oc, ok := g.clients[opponentID]; ok {
		oc.setMatch(m.ID())
	}
	g.mu.RUnlock()

	c.push(ServerFrame{Op: "match_started", MatchID: m.ID()})
	g.sendView(c, m)
	g.sendHand(sess.UserID, m)
	g.sendHand(opponentID, m)
}

func (g *Gateway) handleAction(c *client, sess *Session, frame ClientFrame) {
	kind, ok := game.ParseActionKind(frame.Action)
	if !ok {
		c.push(ServerFrame{Op: "error", Error: g.locale.Localize("error/unknown_action", frame.Action)})
		return
	}
	matchID := frame.MatchID
	if matchID == "" {
		matchID = c.match()
	}

	act := game.Action{
		Kind:       kind,
		HandIndex:  frame.HandIndex,
		SlotIndex:  frame.SlotIndex,
		TargetSlot: -1,
		Defending:  frame.Defending,
		FaceDown:   frame.FaceDown,
		NotCombat:  frame.NotCombat,
		Sacrifices: frame.Sacrifices,
	}
	if frame.TargetSlot != nil {
		act.TargetSlot = *frame.TargetSlot
	}

	res := g.engine.Submit(context.Background(), matchID, sess.UserID, act)
	if res.Err != nil {
		c.push(ServerFrame{Op: "reject", MatchID: matchID, Error: g.localizeErr(res.Err)})
		return
	}
	// The hand snapshot was captured inside the match loop.
	c.push(ServerFrame{Op: "accepted", MatchID: matchID, Resend: res.ResendHand, Hand: res.Hand})
}

func (g *Gateway) handleView(c *client) {
	m, ok := g.engine.Get(c.match())
	if !ok {
		c.push(ServerFrame{Op: "error", Error: g.locale.Localize(game.ErrMatchClosed)})
		return
	}
	g.sendView(c, m)
}

func (g *Gateway) sendView(c *client, m *game.Match) {
	view, err := m.ViewSnapshot(context.Background())
	if err != nil {
		return
	}
	c.push(ServerFrame{Op: "view", MatchID: m.ID(), View: &view})
}

func (g *Gateway) sendHand(userID string, m *game.Match) {
	side, ok := m.SideOf(userID)
	if !ok {
		return
	}
	g.mu.RLock()
	c, ok := g.clients[userID]
	g.mu.RUnlock()
	if !ok {
		return
	}
	hv, err := m.HandSnapshot(context.Background(), side)
	if err != nil {
		return
	}
	c.push(ServerFrame{Op: "hand", MatchID: m.ID(), Hand: &hv})
}

// localizeErr turns a keyed rejection into display text; other errors pass
// through unchanged.
func (g *Gateway) localizeErr(err error) string {
	if rej, ok := game.AsReject(err); ok {
		return g.locale.Localize(rej.Key, rej.Args...)
	}
	return err.Error()
}

// SendMatch pushes a render to every connected player seated in the match.
// The view is the loop-captured snapshot; it is never re-read here.
func (g *Gateway) SendMatch(matchID string, view game.MatchView, image []byte) error {
	frame := ServerFrame{Op: "match", MatchID: matchID, Lines: view.Transcript, View: &view}
	if len(image) > 0 {
		frame.Image = base64.StdEncoding.EncodeToString(image)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.clients {
		if c.match() == matchID {
			c.push(frame)
		}
	}
	return nil
}

// SendHand pushes a private hand view to one player.
func (g *Gateway) SendHand(userID string, hand game.HandView) error {
	g.mu.RLock()
	c, ok := g.clients[userID]
	g.mu.RUnlock()
	if !ok {
		return nil
	}
	c.push(ServerFrame{Op: "hand", MatchID: c.match(), Hand: &hand})
	return nil
}

// DeleteMatch tells seated players the match board is gone.
func (g *Gateway) DeleteMatch(matchID string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.clients {
		if c.match() == matchID {
			c.push(ServerFrame{Op: "match_closed", MatchID: matchID})
			c.setMatch("")
		}
	}
	return nil
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, reason string) {
	msg, _ := json.Marshal(ServerFrame{Op: "error", Error: reason})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.TextMessage, msg)
}

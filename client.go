package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	msgRatePerSec  = 60
	msgRateBurst   = 120
	moveRatePerSec = 240
	moveRateBurst  = 240
)

// frameVerdict is what ReadPump does with one inbound frame
type frameVerdict int

const (
	frameAccept frameVerdict = iota
	frameDrop
	frameClose
)

// Client is one websocket connection. It implements Conn for the game.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	codec      Codec
	limiter    *rate.Limiter
	moveLim    *rate.Limiter
	playerID   string
	remoteAddr string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string, codec Codec) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		codec:      codec,
		limiter:    rate.NewLimiter(msgRatePerSec, msgRateBurst),
		moveLim:    rate.NewLimiter(moveRatePerSec, moveRateBurst),
		remoteAddr: remoteAddr,
		send:       make(chan []byte, sendBufSize),
	}
}

// Send encodes env and queues it without blocking. A slow client loses the
// frame rather than stalling the game.
func (c *Client) Send(env Envelope) {
	data, err := c.codec.Encode(env)
	if err != nil {
		log.Error().Err(err).Str("event", env.T).Msg("encode failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Debug().Str("remote", c.remoteAddr).Str("event", env.T).Msg("send buffer full, frame dropped")
	}
}

// Close ends the write pump after queued frames are flushed
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("player", c.playerID).Str("remote", c.remoteAddr).Msg("ws read error")
			}
			break
		}

		in, err := DecodeFrame(frameType, message)
		switch c.admit(in.T, time.Now()) {
		case frameClose:
			log.Warn().Str("player", c.playerID).Str("remote", c.remoteAddr).Str("event", in.T).Msg("rate limit exceeded, disconnecting")
			return
		case frameDrop:
			continue
		}
		if err != nil {
			log.Debug().Err(err).Str("player", c.playerID).Msg("bad frame dropped")
			continue
		}
		c.handleMessage(in)
	}
}

// admit applies the inbound budget. Movement arrives at display rate and
// only the latest transform matters, so excess movement is dropped. Every
// other frame, undecodable ones included, counts against the event budget
// and exhausting it closes the connection.
func (c *Client) admit(event string, now time.Time) frameVerdict {
	if event == MsgPlayerMovement {
		if c.moveLim.AllowN(now, 1) {
			return frameAccept
		}
		return frameDrop
	}
	if c.limiter.AllowN(now, 1) {
		return frameAccept
	}
	return frameClose
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(c.codec.FrameType(), message); err != nil {
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

// handleMessage decodes the payload on the connection goroutine and hands a
// closure to the game loop. Malformed payloads drop the message.
func (c *Client) handleMessage(in Inbound) {
	g := c.hub.game
	id := c.playerID

	switch in.T {
	case MsgRequestJoin:
		var name string
		if in.HasPayload() && in.Payload(&name) != nil {
			return
		}
		g.Submit(func() { g.requestJoin(id, name) })

	case MsgPlayerMovement:
		var m MovementMsg
		if err := in.Payload(&m); err != nil {
			return
		}
		g.Submit(func() { g.updateMovement(id, m) })

	case MsgShootPlayer:
		var target string
		if err := in.Payload(&target); err != nil {
			return
		}
		g.Submit(func() { g.shootPlayer(id, target) })

	case MsgShootZombie:
		var zombieID int
		if err := in.Payload(&zombieID); err != nil {
			return
		}
		g.Submit(func() { g.shootZombie(id, zombieID) })

	case MsgPlayerDied:
		var killer string
		if in.HasPayload() && in.Payload(&killer) != nil {
			return
		}
		g.Submit(func() { g.recordDeath(id, killer) })

	case MsgPlayerRespawn:
		g.Submit(func() { g.recordRespawn(id) })

	case MsgStartGame:
		var d string
		if in.HasPayload() && in.Payload(&d) != nil {
			return
		}
		difficulty := ParseDifficulty(d)
		g.Submit(func() { g.startGame(id, difficulty) })

	case MsgReturnToLobby:
		g.Submit(func() { g.returnToLobby(id) })

	default:
		log.Debug().Str("player", id).Str("event", in.T).Msg("unknown event")
	}
}

package main

// Conn is one client connection as seen by the game. Send must not block.
type Conn interface {
	Send(env Envelope)
	Close()
}

// Gateway delivers events to one, some, or all connected players. It is
// owned by the game actor and only touched from its goroutine.
type Gateway struct {
	conns map[string]Conn
	order []string
}

// NewGateway creates an empty Gateway
func NewGateway() *Gateway {
	return &Gateway{conns: make(map[string]Conn)}
}

// Attach registers a connection under a player id
func (gw *Gateway) Attach(id string, c Conn) {
	if _, ok := gw.conns[id]; !ok {
		gw.order = append(gw.order, id)
	}
	gw.conns[id] = c
}

// Detach forgets a connection and returns it, or nil
func (gw *Gateway) Detach(id string) Conn {
	c, ok := gw.conns[id]
	if !ok {
		return nil
	}
	delete(gw.conns, id)
	for i, oid := range gw.order {
		if oid == id {
			gw.order = append(gw.order[:i], gw.order[i+1:]...)
			break
		}
	}
	return c
}

// SendTo delivers to a single player; unknown ids are dropped
func (gw *Gateway) SendTo(id, t string, data interface{}) {
	if c, ok := gw.conns[id]; ok {
		c.Send(Envelope{T: t, Data: data})
	}
}

// Broadcast delivers to every connection
func (gw *Gateway) Broadcast(t string, data interface{}) {
	env := Envelope{T: t, Data: data}
	for _, id := range gw.order {
		gw.conns[id].Send(env)
	}
}

// BroadcastExcept delivers to every connection but one
func (gw *Gateway) BroadcastExcept(except, t string, data interface{}) {
	env := Envelope{T: t, Data: data}
	for _, id := range gw.order {
		if id == except {
			continue
		}
		gw.conns[id].Send(env)
	}
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient() *Client {
	return NewClient(nil, nil, "192.0.2.1:5000", CodecByName("json"))
}

// playFor feeds movement at fps plus the given shots per second through the
// inbound budget and reports what happened
func playFor(c *Client, d time.Duration, fps, shotsPerSec int) (moves, dropped int, closedAt time.Duration) {
	start := testEpoch
	frame := time.Second / time.Duration(fps)
	shotEvery := time.Duration(0)
	if shotsPerSec > 0 {
		shotEvery = time.Second / time.Duration(shotsPerSec)
	}
	nextShot := shotEvery
	for at := time.Duration(0); at < d; at += frame {
		switch c.admit(MsgPlayerMovement, start.Add(at)) {
		case frameAccept:
			moves++
		case frameDrop:
			dropped++
		case frameClose:
			return moves, dropped, at
		}
		if shotEvery > 0 && at >= nextShot {
			nextShot += shotEvery
			if c.admit(MsgShootZombie, start.Add(at)) == frameClose {
				return moves, dropped, at
			}
		}
	}
	return moves, dropped, -1
}

func TestInboundBudgetKeepsPlayersAtFrameRate(t *testing.T) {
	for _, fps := range []int{60, 144, 240} {
		c := newTestClient()
		moves, dropped, closedAt := playFor(c, 2*time.Minute, fps, 5)
		assert.Equal(t, time.Duration(-1), closedAt, "%d fps closed at %s", fps, closedAt)
		assert.Zero(t, dropped, "%d fps", fps)
		assert.GreaterOrEqual(t, moves, fps*120, "%d fps", fps)
	}
}

func TestInboundBudgetDropsExcessMovement(t *testing.T) {
	c := newTestClient()
	moves, dropped, closedAt := playFor(c, 10*time.Second, 1000, 0)

	assert.Equal(t, time.Duration(-1), closedAt, "movement alone never closes the connection")
	assert.NotZero(t, dropped)
	assert.LessOrEqual(t, moves, moveRateBurst+moveRatePerSec*10+1)
}

func TestInboundBudgetClosesEventFlood(t *testing.T) {
	c := newTestClient()
	now := testEpoch
	for i := 0; i < msgRateBurst; i++ {
		assert.Equal(t, frameAccept, c.admit(MsgShootZombie, now))
	}
	assert.Equal(t, frameClose, c.admit(MsgShootZombie, now))

	c = newTestClient()
	for i := 0; i < msgRateBurst; i++ {
		c.admit("", now)
	}
	assert.Equal(t, frameClose, c.admit("", now), "undecodable frames spend the event budget")
	assert.Equal(t, frameAccept, c.admit(MsgPlayerMovement, now), "movement has its own budget")
}

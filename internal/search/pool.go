// Package search wraps the managed course search service: query
// composition, input sanitization, and a bounded provider connection pool.
package search

import (
	"context"
	"errors"
	"time"

	"github.com/jordan/career-advisor/internal/config"
	"github.com/jordan/career-advisor/internal/logger"
	"github.com/rs/zerolog"
)

// ErrPoolExhausted is returned when no connection becomes available
// within the acquire timeout.
var ErrPoolExhausted = errors.New("connection pool exhausted")

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("connection pool closed")

// Conn is one live session with the search provider.
type Conn interface {
	Close() error
}

// Dialer opens a new provider session.
type Dialer func(ctx context.Context) (Conn, error)

// pooledConn pairs a session with its creation time for TTL checks.
type pooledConn struct {
	conn    Conn
	created time.Time
}

// Pool is a bounded pool of provider sessions. Capacity is enforced with
// a token channel; idle sessions are reused until their TTL passes, at
// which point they are closed and re-dialed on the next acquire.
type Pool struct {
	dial           Dialer
	acquireTimeout time.Duration
	ttl            time.Duration
	tokens         chan struct{}
	idle           chan pooledConn
	closed         chan struct{}
	log            zerolog.Logger
}

// NewPool creates a pool with the given bounds.
func NewPool(dial Dialer, cfg config.PoolConfig) *Pool {
	max := cfg.MaxConnections
	if max < 1 {
		max = 1
	}
	p := &Pool{
		dial:           dial,
		acquireTimeout: cfg.AcquireTimeout,
		ttl:            cfg.ConnectionTTL,
		tokens:         make(chan struct{}, max),
		idle:           make(chan pooledConn, max),
		closed:         make(chan struct{}),
		log:            logger.Component("search_pool"),
	}
	for i := 0; i < max; i++ {
		p.tokens <- struct{}{}
	}
	return p
}

// Lease is a borrowed connection. Exactly one of Release or Discard must
// be called, including on cancellation paths.
type Lease struct {
	pool *Pool
	conn pooledConn
	done bool
}

// Conn returns the borrowed session.
func (l *Lease) Conn() Conn { return l.conn.conn }

// Release returns the session to the pool for reuse.
func (l *Lease) Release() {
	if l.done {
		return
	}
	l.done = true
	select {
	case <-l.pool.closed:
		_ = l.conn.conn.Close()
	default:
		select {
		case l.pool.idle <- l.conn:
		default:
			// Idle buffer full (should not happen with matched capacities);
			// close rather than leak.
			_ = l.conn.conn.Close()
		}
	}
	l.pool.tokens <- struct{}{}
}

// Discard closes the session instead of returning it, freeing its slot.
// Use after a transport error that may have poisoned the session.
func (l *Lease) Discard() {
	if l.done {
		return
	}
	l.done = true
	_ = l.conn.conn.Close()
	l.pool.tokens <- struct{}{}
}

// Acquire borrows a session, waiting up to the acquire timeout for a free
// slot. Stale idle sessions (older than the TTL) are proactively closed
// and replaced. Fails with ErrPoolExhausted on timeout and with the
// context error on cancellation.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	timer := time.NewTimer(p.acquireTimeout)
	defer timer.Stop()

	select {
	case <-p.tokens:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, ErrPoolClosed
	case <-timer.C:
		p.log.Warn().Dur("waited", p.acquireTimeout).Msg("pool acquire timed out")
		return nil, ErrPoolExhausted
	}

	// Holding a token; reuse an idle session when it is still fresh.
	for {
		select {
		case pc := <-p.idle:
			if p.ttl > 0 && time.Since(pc.created) > p.ttl {
				_ = pc.conn.Close()
				continue
			}
			return &Lease{pool: p, conn: pc}, nil
		default:
			conn, err := p.dial(ctx)
			if err != nil {
				p.tokens <- struct{}{}
				return nil, err
			}
			return &Lease{pool: p, conn: pooledConn{conn: conn, created: time.Now()}}, nil
		}
	}
}

// Close marks the pool closed and closes every idle session. Outstanding
// leases stay usable; their connections are closed on Release/Discard.
func (p *Pool) Close() {
	close(p.closed)
	for {
		select {
		case pc := <-p.idle:
			_ = pc.conn.Close()
		default:
			return
		}
	}
}

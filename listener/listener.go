// Package listener provides the net.Listener wrappers used by the Destiin HTTP server:
// one that serves TLS and plain HTTP on the same port, and one that survives
// per-connection accept failures.
package listener

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSniffTimeout bounds how long Accept waits for the first bytes of a connection.
const DefaultSniffTimeout = 10 * time.Second

// peekedConn serves reads from the buffered reader that was used to peek at the connection.
type peekedConn struct {
	net.Conn
	reader *bufio.Reader
}

func (c *peekedConn) Read(b []byte) (int, error) {
	return c.reader.Read(b)
}

// isTLSRecord reports whether header starts a TLS handshake record (content type 22, major version 3).
func isTLSRecord(header []byte) bool {
	return len(header) >= 3 && header[0] == 0x16 && header[1] == 0x03 && header[2] <= 0x04
}

// TLSSniffer wraps a net.Listener and inspects the first bytes of every connection.
// TLS connections are returned as *tls.Conn with the handshake left to the first read
// (net/http performs it explicitly), anything else is returned as a plain connection.
//
// Connections are sniffed concurrently, so a client that stays silent only holds up itself.
// Sniffing failures are returned by Accept like accept errors.
type TLSSniffer struct {
	net.Listener
	TLSConfig *tls.Config
	Timeout   time.Duration // Peek deadline, DefaultSniffTimeout when zero

	start     sync.Once
	closeOnce sync.Once
	accepted  chan accepted
	closed    chan struct{}
	err       error // Set before closed is closed

	mu      sync.Mutex
	pending map[net.Conn]struct{} // Connections being sniffed
}

type accepted struct {
	conn net.Conn
	err  error
}

// NewTLSSniffer wraps listener so it accepts TLS with tlsConfig next to plain connections.
func NewTLSSniffer(listener net.Listener, tlsConfig *tls.Config) *TLSSniffer {
	return &TLSSniffer{
		Listener:  listener,
		TLSConfig: tlsConfig,
		Timeout:   DefaultSniffTimeout,
	}
}

func (l *TLSSniffer) init() {
	l.start.Do(func() {
		l.accepted = make(chan accepted)
		l.closed = make(chan struct{})
		l.pending = make(map[net.Conn]struct{})
		go l.acceptLoop()
	})
}

// Accept returns the next sniffed connection, or the error of a connection that failed sniffing.
func (l *TLSSniffer) Accept() (net.Conn, error) {
	l.init()
	select {
	case a := <-l.accepted:
		return a.conn, a.err
	case <-l.closed:
		return nil, l.err
	}
}

// Close stops accepting and closes the connections that are still being sniffed.
func (l *TLSSniffer) Close() error {
	l.init()
	l.shutdown(fmt.Errorf("accepting connection: %w", net.ErrClosed))
	err := l.Listener.Close()

	l.mu.Lock()
	for conn := range l.pending {
		conn.Close()
	}
	l.mu.Unlock()
	return err
}

func (l *TLSSniffer) shutdown(err error) {
	l.closeOnce.Do(func() {
		l.err = err
		close(l.closed)
	})
}

func (l *TLSSniffer) acceptLoop() {
	for {
		rawConnection, err := l.Listener.Accept()
		if err != nil {
			err = fmt.Errorf("accepting connection: %w", err)
			if errors.Is(err, net.ErrClosed) {
				l.shutdown(err)
				return
			}
			l.deliver(accepted{err: err})
			continue
		}

		l.mu.Lock()
		select {
		case <-l.closed:
			l.mu.Unlock()
			rawConnection.Close()
			continue
		default:
		}
		l.pending[rawConnection] = struct{}{}
		l.mu.Unlock()

		go l.sniff(rawConnection)
	}
}

// deliver hands a result to Accept. It reports false when the listener was closed first.
func (l *TLSSniffer) deliver(a accepted) bool {
	select {
	case <-l.closed:
		return false
	default:
	}
	select {
	case l.accepted <- a:
		return true
	case <-l.closed:
		return false
	}
}

func (l *TLSSniffer) sniff(rawConnection net.Conn) {
	conn, err := l.peek(rawConnection)

	l.mu.Lock()
	delete(l.pending, rawConnection)
	l.mu.Unlock()

	if err != nil {
		rawConnection.Close()
		l.deliver(accepted{err: err})
		return
	}
	if !l.deliver(accepted{conn: conn}) {
		rawConnection.Close()
	}
}

func (l *TLSSniffer) peek(rawConnection net.Conn) (net.Conn, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultSniffTimeout
	}
	if err := rawConnection.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("setting read deadline for peek: %w", err)
	}

	reader := bufio.NewReader(rawConnection)
	header, peekErr := reader.Peek(3)

	if err := rawConnection.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("clearing read deadline after peek: %w", err)
	}
	if peekErr != nil {
		return nil, fmt.Errorf("peeking initial bytes: %w", peekErr)
	}

	conn := &peekedConn{Conn: rawConnection, reader: reader}
	if isTLSRecord(header) {
		return tls.Server(conn, l.TLSConfig), nil
	}
	return conn, nil
}

// ResilientListener wraps a net.Listener so that failures of a single connection,
// such as a client that never sends a byte, do not stop the server's accept loop.
type ResilientListener struct {
	net.Listener
	logger *zap.Logger
}

// NewResilientListener wraps listener. A nil logger discards rejected connection errors.
func NewResilientListener(listener net.Listener, logger *zap.Logger) *ResilientListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResilientListener{Listener: listener, logger: logger}
}

// Accept returns the next connection. Only a closed listener ends the loop;
// every other error is logged and the next connection is awaited.
func (l *ResilientListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil, err
			}
			l.logger.Warn("connection rejected", zap.Error(err))
			continue
		}
		return conn, nil
	}
}

// Listen opens a TCP listener on address. When tlsConfig is not nil the listener
// also accepts TLS on the same port.
func Listen(address string, tlsConfig *tls.Config, logger *zap.Logger) (net.Listener, error) {
	rawListener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("setting up listener on %s: %w", address, err)
	}
	var l net.Listener = rawListener
	if tlsConfig != nil {
		l = NewTLSSniffer(rawListener, tlsConfig)
	}
	return NewResilientListener(l, logger), nil
}

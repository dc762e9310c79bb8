package gralloc

import "fmt"

type connPhase uint8

const (
	connUninitialized connPhase = iota
	connOpen
	connFailed
)

func (p connPhase) String() string {
	switch p {
	case connUninitialized:
		return "uninitialized"
	case connOpen:
		return "open"
	case connFailed:
		return "failed"
	default:
		return fmt.Sprintf("connPhase(%d)", uint8(p))
	}
}

// connState is the module's single ION connection.
// Transitions: uninitialized -> open, uninitialized -> failed. Nothing leaves
// open or failed for the life of the module.
type connState struct {
	phase connPhase
	conn  ContiguousConn
	err   error
}

// ensureConnected returns the shared ION connection, opening it on first use.
// A failed open is cached and returned to every later caller.
func (m *Module) ensureConnected() (ContiguousConn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.ion.phase {
	case connOpen:
		return m.ion.conn, nil
	case connFailed:
		return nil, m.ion.err
	}

	if m.opts.Contiguous == nil {
		m.ion = connState{phase: connFailed, err: fmt.Errorf("%w: no contiguous allocator", ErrBackendUnavailable)}
		return nil, m.ion.err
	}

	conn, err := m.opts.Contiguous.Open()
	if err != nil {
		m.ion = connState{phase: connFailed, err: fmt.Errorf("gralloc: open contiguous allocator: %w", err)}
		m.log().Warn("contiguous allocator unavailable", "err", err)
		return nil, m.ion.err
	}
	m.ion = connState{phase: connOpen, conn: conn}
	return conn, nil
}

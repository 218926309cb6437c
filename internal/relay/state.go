package relay

type phase int

const (
	phaseNotReady phase = iota
	phaseReady
	phaseClosed
)

func (p phase) String() string {
	switch p {
	case phaseReady:
		return "ready"
	case phaseClosed:
		return "closed"
	default:
		return "not_ready"
	}
}

// readiness tracks the upstream handshake. waiters is closed exactly once:
// with err == nil when the upstream became ready, or with the failure that
// prevented it.
type readiness struct {
	phase    phase
	wasReady bool
	waiters  chan struct{}
	released bool
	err      error
}

func newReadiness() readiness {
	return readiness{waiters: make(chan struct{})}
}

func (r *readiness) toReady() bool {
	if r.phase != phaseNotReady {
		return false
	}
	r.phase = phaseReady
	r.wasReady = true
	r.release(nil)
	return true
}

// reject fails pending waiters without leaving NotReady; teardown still
// happens through the close path.
func (r *readiness) reject(err error) {
	if r.phase == phaseNotReady {
		r.release(err)
	}
}

func (r *readiness) toClosed(err error) {
	if r.wasReady {
		r.release(nil)
	} else {
		r.release(err)
	}
	r.phase = phaseClosed
}

func (r *readiness) release(err error) {
	if r.released {
		return
	}
	r.err = err
	r.released = true
	close(r.waiters)
}

func (r *readiness) isReady() bool {
	return r.phase == phaseReady
}

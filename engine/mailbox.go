package engine

import "github.com/cwbudde/algo-daw/mixer"

// blockState is what the render goroutine needs for one block.
type blockState struct {
	snap mixer.Snapshot
	loop *Loop
}

// mailbox hands the newest blockState to the render goroutine. A put
// replaces any state that was not taken yet. There is a single publisher
// (the engine, under its lock) and a single taker.
type mailbox struct {
	ch chan *blockState
}

func newMailbox() *mailbox {
	return &mailbox{ch: make(chan *blockState, 1)}
}

func (m *mailbox) put(st *blockState) {
	for {
		select {
		case m.ch <- st:
			return
		default:
		}

		select {
		case <-m.ch:
		default:
		}
	}
}

func (m *mailbox) take() (*blockState, bool) {
	select {
	case st := <-m.ch:
		return st, true
	default:
		return nil, false
	}
}

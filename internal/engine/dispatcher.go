package engine

import "context"

// Event is one external happening fed to the dispatcher.
type Event interface{ isEvent() }

// Determining asks for a routing decision. Respond receives the engine's
// answer exactly once; nil means pass through.
type Determining struct {
	Item    Item
	Respond func(*Response)
}

// Completed reports a download reaching its final state.
type Completed struct{ ID string }

// ButtonClicked is a button press on a notification.
type ButtonClicked struct {
	ID    string
	Index int
}

// BodyClicked is a click on a notification body.
type BodyClicked struct{ ID string }

// Flush is a synchronization point: Done is closed once every event
// submitted before it has been handled.
type Flush struct{ Done chan struct{} }

func (Determining) isEvent()   {}
func (Completed) isEvent()     {}
func (ButtonClicked) isEvent() {}
func (BodyClicked) isEvent()   {}
func (Flush) isEvent()         {}

// Dispatcher feeds events to the engine from a single goroutine, so handler
// bodies never race and per-download ordering falls out of the queue order.
type Dispatcher struct {
	eng *Engine
	ch  chan Event
}

func NewDispatcher(eng *Engine, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{eng: eng, ch: make(chan Event, buffer)}
}

// Submit enqueues an event. Blocks when the queue is full.
func (d *Dispatcher) Submit(ctx context.Context, ev Event) error {
	select {
	case d.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.ch:
			d.dispatch(ctx, ev)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case Determining:
		resp := d.eng.HandleDetermining(ctx, e.Item)
		if e.Respond != nil {
			e.Respond(resp)
		}
	case Completed:
		d.eng.HandleCompleted(ctx, e.ID)
	case ButtonClicked:
		d.eng.HandleButton(ctx, e.ID, e.Index)
	case BodyClicked:
		d.eng.HandleClicked(ctx, e.ID)
	case Flush:
		if e.Done != nil {
			close(e.Done)
		}
	}
}

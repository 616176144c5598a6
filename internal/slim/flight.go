package slim

import "sync"

// Interactive flows that talk to the collaborator. Each allows one pending
// request at a time.
const (
	FlowAssess   = "assess"
	FlowConfirm  = "confirm"
	FlowChat     = "chat"
	FlowEvaluate = "evaluate"
	FlowSwap     = "swap"
	FlowFixMeal  = "fix-meal"
	FlowReport   = "report"
	FlowAnalyze  = "analyze"
)

// flightGroup tracks which flows have a request outstanding.
type flightGroup struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newFlightGroup() *flightGroup {
	return &flightGroup{busy: make(map[string]bool)}
}

// acquire marks flow as busy and returns the function that releases it.
func (g *flightGroup) acquire(flow string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[flow] {
		return nil, ErrRequestInFlight
	}
	g.busy[flow] = true
	return func() {
		g.mu.Lock()
		delete(g.busy, flow)
		g.mu.Unlock()
	}, nil
}

package state

import "testing"

type phase uint32

const (
	idle phase = iota
	busy
)

func TestStateMachine(t *testing.T) {
	var stm StateMachine[phase]

	if stm.GetState() != idle {
		t.Errorf("zero value state %d", stm.GetState())
	}
	if !stm.ChangeState(idle, busy) {
		t.Errorf("idle -> busy change failed")
	}
	if stm.ChangeState(idle, busy) {
		t.Errorf("change from a wrong state succeeded")
	}
	stm.SetState(idle)
	if stm.GetState() != idle {
		t.Errorf("SetState failed")
	}
}

package lsdn

import "testing"

func TestRenew(t *testing.T) {
	cases := []struct {
		in   State
		want State
	}{
		{StateNew, StateNew},
		{StateOK, StateRenew},
		{StateRenew, StateRenew},
	}
	for _, c := range cases {
		s := c.in
		renew(&s)
		if s != c.want {
			t.Errorf("renew(%v) = %v, want %v", c.in, s, c.want)
		}
	}
}

func TestRenewPanicsOnDelete(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected renew on DELETE to panic")
		}
	}()
	s := StateDelete
	renew(&s)
}

func TestPropagate(t *testing.T) {
	cases := []struct {
		from, to, want State
	}{
		{StateRenew, StateOK, StateRenew},
		{StateRenew, StateNew, StateNew},
		{StateRenew, StateDelete, StateDelete},
		{StateOK, StateOK, StateOK},
	}
	for _, c := range cases {
		from, to := c.from, c.to
		propagate(&from, &to)
		if to != c.want {
			t.Errorf("propagate(%v, %v) = %v, want %v", c.from, c.to, to, c.want)
		}
	}
}

func TestShouldValidate(t *testing.T) {
	if !shouldValidate(StateNew) || !shouldValidate(StateRenew) {
		t.Error("NEW and RENEW should be validated")
	}
	if shouldValidate(StateOK) || shouldValidate(StateDelete) {
		t.Error("OK and DELETE should not be validated")
	}
}

func TestAckState(t *testing.T) {
	for _, in := range []State{StateNew, StateRenew} {
		s := in
		ackState(&s)
		if s != StateOK {
			t.Errorf("ackState(%v) = %v, want OK", in, s)
		}
	}
	s := StateDelete
	ackState(&s)
	if s != StateDelete {
		t.Error("ackState should not touch DELETE")
	}
}

func TestAckUncommit(t *testing.T) {
	s := StateDelete
	if !ackUncommit(&s) || s != StateDelete {
		t.Errorf("ackUncommit(DELETE) should report true and stay DELETE, got %v", s)
	}

	s = StateRenew
	if !ackUncommit(&s) || s != StateNew {
		t.Errorf("ackUncommit(RENEW) should report true and reset to NEW, got %v", s)
	}

	s = StateOK
	if ackUncommit(&s) || s != StateOK {
		t.Errorf("ackUncommit(OK) should report false and leave state untouched, got %v", s)
	}

	s = StateNew
	if ackUncommit(&s) || s != StateNew {
		t.Errorf("ackUncommit(NEW) should report false and leave state untouched, got %v", s)
	}
}

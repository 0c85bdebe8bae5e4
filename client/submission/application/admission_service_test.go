package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGate struct {
	acquired int
	notified int
	block    bool
	err      error
}

func (g *fakeGate) Acquire(ctx context.Context) error {
	g.acquired++
	if g.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return g.err
}

func (g *fakeGate) Notify() { g.notified++ }

func TestAdmissionService_Admit_AllowsWhenNoGate(t *testing.T) {
	svc := AdmissionService{}
	waited, err := svc.Admit(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if waited != 0 {
		t.Fatalf("expected no wait, got %s", waited)
	}
	svc.Done()
}

func TestAdmissionService_Admit_UsesTimeout(t *testing.T) {
	gate := &fakeGate{block: true}
	svc := AdmissionService{Gate: gate, AcquireTimeout: 10 * time.Millisecond}

	_, err := svc.Admit(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestAdmissionService_Admit_PropagatesGateError(t *testing.T) {
	boom := errors.New("closed")
	svc := AdmissionService{Gate: &fakeGate{err: boom}}

	if _, err := svc.Admit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected gate error, got %v", err)
	}
}

func TestAdmissionService_Admit_ReportsWaitedTime(t *testing.T) {
	gate := &fakeGate{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	svc := AdmissionService{
		Gate: gate,
		Now: func() time.Time {
			calls++
			if calls == 1 {
				return base
			}
			return base.Add(250 * time.Millisecond)
		},
	}

	waited, err := svc.Admit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if waited != 250*time.Millisecond {
		t.Fatalf("expected waited=250ms, got %s", waited)
	}
	if gate.acquired != 1 {
		t.Fatalf("expected one Acquire, got %d", gate.acquired)
	}
}

func TestAdmissionService_Done_NotifiesGate(t *testing.T) {
	gate := &fakeGate{}
	svc := AdmissionService{Gate: gate}
	svc.Done()
	if gate.notified != 1 {
		t.Fatalf("expected one Notify, got %d", gate.notified)
	}
}

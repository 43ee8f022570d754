package cpu

import "testing"

func TestNewFactory_EmptyStrategiesDefaultsToAny(t *testing.T) {
	f := NewFactory(nil)
	if len(f.strategies) != 1 || f.strategies[0] != Any {
		t.Fatalf("expected default strategy [Any], got %v", f.strategies)
	}
}

func TestFactory_NewThreadRunsLoop(t *testing.T) {
	f := NewFactory([]Strategy{SameCore})
	done := make(chan struct{})
	f.NewThread(0, func() { close(done) })
	<-done
}

func TestFactory_NumCPU(t *testing.T) {
	f := NewFactory(nil)
	if f.NumCPU() <= 0 {
		t.Fatalf("expected positive NumCPU, got %d", f.NumCPU())
	}
}

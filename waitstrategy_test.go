package affinitypool

import "testing"

func TestNewWaitStrategy_Builtins(t *testing.T) {
	for _, name := range []WaitStrategyName{WaitBusySpin, WaitYield, WaitPark} {
		ws, err := NewWaitStrategy(name)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", name, err)
		}
		ws.Wait() // must return promptly and not panic
	}
}

func TestNewWaitStrategy_UnknownRejected(t *testing.T) {
	if _, err := NewWaitStrategy(WaitStrategyName(99)); err == nil {
		t.Fatal("expected error for unknown wait strategy")
	}
}

func TestParseWaitStrategyName(t *testing.T) {
	cases := map[string]WaitStrategyName{
		"busy-spin": WaitBusySpin,
		"yield":     WaitYield,
		"sleep":     WaitPark,
		"park":      WaitPark,
	}
	for token, want := range cases {
		got, err := ParseWaitStrategyName(token)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", token, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", token, want, got)
		}
	}

	if _, err := ParseWaitStrategyName("nonsense"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

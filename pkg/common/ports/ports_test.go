package ports

import (
	"net"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNextBlockStart(t *testing.T) {
	tests := []struct {
		name      string
		allocated []int
		want      int
	}{
		{name: "empty", allocated: nil, want: 20000},
		{name: "first block used", allocated: []int{20000, 20001, 20002, 20003}, want: 20010},
		{name: "exact multiple", allocated: []int{20010}, want: 20020},
		{name: "unordered", allocated: []int{20012, 20000, 20021}, want: 20030},
		{name: "below base", allocated: []int{80}, want: 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextBlockStart(tt.allocated); got != tt.want {
				t.Errorf("NextBlockStart() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextBlockStartProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("block starts above every allocated port", prop.ForAll(
		func(allocated []int) bool {
			start := NextBlockStart(allocated)
			for _, p := range allocated {
				if start <= p {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(BasePort, BasePort+5000)),
	))

	properties.Property("block start is aligned and not below base", prop.ForAll(
		func(allocated []int) bool {
			start := NextBlockStart(allocated)
			return start%BlockSize == 0 && start >= BasePort
		},
		gen.SliceOf(gen.IntRange(0, BasePort+5000)),
	))

	properties.TestingRun(t)
}

func TestBlock(t *testing.T) {
	got := Block(20010, 3)
	want := []int{20010, 20011, 20012}
	if len(got) != len(want) {
		t.Fatalf("Block() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Block()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIsPortAvailable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create test listener: %v", err)
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	if IsPortAvailable(port) {
		t.Errorf("Port %d should not be available", port)
	}
	if busy := Busy([]int{port}); len(busy) != 1 || busy[0] != port {
		t.Errorf("Busy() = %v, want [%d]", busy, port)
	}
}

package ports

import (
	"fmt"
	"net"
)

const (
	// BasePort is the first host port handed out to a network.
	BasePort = 20000
	// BlockSize is the number of host ports reserved per node.
	BlockSize = 10
)

// NextBlockStart returns the first port of the next free block. Blocks start
// on multiples of BlockSize strictly above the highest allocated port, so a
// node's ports never overlap a previous node's block. Freed ports are not
// reused.
func NextBlockStart(allocated []int) int {
	highest := BasePort - BlockSize
	for _, p := range allocated {
		if p > highest {
			highest = p
		}
	}
	return (highest/BlockSize + 1) * BlockSize
}

// Block returns count consecutive ports starting at start.
func Block(start, count int) []int {
	ports := make([]int, count)
	for i := range ports {
		ports[i] = start + i
	}
	return ports
}

// IsPortAvailable checks if a specific port can currently be bound on the host
func IsPortAvailable(port int) bool {
	addrs := []string{
		"0.0.0.0",
		"127.0.0.1",
	}
	for _, addr := range addrs {
		fullAddr := fmt.Sprintf("%s:%d", addr, port)
		listener, err := net.Listen("tcp", fullAddr)
		if err != nil {
			return false
		}
		listener.Close()
	}
	return true
}

// Busy returns the subset of ports that cannot currently be bound.
func Busy(ports []int) []int {
	var busy []int
	for _, p := range ports {
		if !IsPortAvailable(p) {
			busy = append(busy, p)
		}
	}
	return busy
}

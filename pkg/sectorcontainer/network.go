package sectorcontainer

import (
	"fmt"
	"sync"
)

// subnetAllocator hands out 172.x.0.0/16 subnets, one per sector, choosing
// the second octet sequentially, the same bridge-per-scope idea as the
// hydra manager's bridge index allocation but without shelling out to
// `ip` directly — CreateNetwork asks the runtime to build the bridge once
// the subnet is chosen.
type subnetAllocator struct {
	mu   sync.Mutex
	next int // second octet
}

func newSubnetAllocator() *subnetAllocator {
	return &subnetAllocator{next: 21} // leave 172.17-172.20 clear of Docker's own default range
}

func (s *subnetAllocator) allocate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	octet := s.next
	s.next++
	if s.next > 255 {
		s.next = 21
	}
	return fmt.Sprintf("172.%d.0.0/16", octet)
}

// portAllocator hands out host ports from the dynamic range, tracking
// which are in use across all sector containers.
type portAllocator struct {
	mu   sync.Mutex
	low  int
	high int
	used map[int]bool
}

func newPortAllocator(low, high int) *portAllocator {
	return &portAllocator{low: low, high: high, used: make(map[int]bool)}
}

func (p *portAllocator) allocate() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for port := p.low; port <= p.high; port++ {
		if !p.used[port] {
			p.used[port] = true
			return port, nil
		}
	}
	return 0, fmt.Errorf("sectorcontainer: no host ports available in [%d,%d]", p.low, p.high)
}

func (p *portAllocator) release(port int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.used, port)
}

func (p *portAllocator) releaseAll(ports map[int]int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, hostPort := range ports {
		delete(p.used, hostPort)
	}
}

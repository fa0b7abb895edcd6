package resilience

import (
	"net/url"
	"sort"
	"sync"
)

// Group keeps one breaker per upstream host so that a dead host does not
// fail calls to healthy ones. Breakers are created on first use and named
// after their host.
type Group struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group whose breakers share settings.
func NewGroup(settings Settings) *Group {
	return &Group{
		settings: settings,
		breakers: make(map[string]*Breaker),
	}
}

// For returns the breaker guarding the host of rawURL.
func (g *Group) For(rawURL string) *Breaker {
	return g.Get(HostOf(rawURL))
}

// Get returns the breaker for host, creating it when needed.
func (g *Group) Get(host string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[host]
	if !ok {
		b = New(host, g.settings)
		g.breakers[host] = b
	}
	return b
}

// Lookup returns the breaker for host without creating one.
func (g *Group) Lookup(host string) (*Breaker, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.breakers[host]
	return b, ok
}

// Hosts lists the hosts that have a breaker, sorted.
func (g *Group) Hosts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	hosts := make([]string, 0, len(g.breakers))
	for host := range g.breakers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// HostOf returns the host:port of rawURL, or "unknown" when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

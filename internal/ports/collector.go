package ports

import "context"

// Collector dispara el refresco de un feed stale delegando en los
// colectores externos. La implementación aplica rate limiting: los
// upstreams de datos NBA banean scrapers agresivos.
type Collector interface {
	// Refresh regenera el artefacto del feed dado.
	Refresh(ctx context.Context, feed string) error
}

package health

import (
	"context"
	"net/http"
	"time"

	"github.com/maplecart/storefront-api/internal/common"
)

// Checker probes the service's dependencies. A nil probe is treated as
// healthy, so deployments without that dependency still pass readiness.
type Checker struct {
	PingRedis   func(ctx context.Context) error
	PingCatalog func(ctx context.Context) error
	Timeout     time.Duration
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 2 * time.Second
	}
	return c.Timeout
}

// Live reports process liveness.
func (c *Checker) Live(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the service can take traffic.
func (c *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout())
	defer cancel()

	checks := map[string]string{}
	healthy := true
	for name, probe := range map[string]func(context.Context) error{
		"redis":   c.PingRedis,
		"catalog": c.PingCatalog,
	} {
		if probe == nil {
			continue
		}
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}
	if !healthy {
		common.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "checks": checks})
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": checks})
}

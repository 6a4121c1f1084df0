package provider

import (
	"math/rand"
	"net/http"
	"time"
)

// isRetryableStatus limits retries to gateway-level failures. 4xx and
// other provider-reported errors are final.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// linearBackoff waits attempt+1 seconds with ±20% jitter.
func linearBackoff(attempt int) time.Duration {
	return jitter(time.Duration(attempt+1) * time.Second)
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*(2*delta)
	return time.Duration(v * float64(time.Second))
}

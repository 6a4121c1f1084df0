package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// EndpointValidator checks that a configured provider base URL is usable.
type EndpointValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewEndpointValidatorWithOptions restricts schemes and, when hosts is
// non-empty, the hosts a provider may live on.
func NewEndpointValidatorWithOptions(schemes []string, hosts []string) *EndpointValidator {
	return &EndpointValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// Validate rejects empty, relative, query-bearing or disallowed base URLs.
func (v *EndpointValidator) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}
	if !contains(v.allowedSchemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("endpoint scheme %q not allowed", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("endpoint %q has no host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("endpoint %q must not carry a query or fragment", raw)
	}
	if len(v.allowedHosts) > 0 && !contains(v.allowedHosts, u.Hostname()) {
		return fmt.Errorf("endpoint host %q not allowed", u.Hostname())
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

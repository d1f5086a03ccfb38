package action

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog names the custom handlers a config file may refer to.
type Catalog map[string]Handler

// Names returns the catalog keys sorted.
func (c Catalog) Names() []string {
	out := make([]string, 0, len(c))
	for name := range c {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseAction decodes "none", "subsystem_reset", "system_reset" or
// "custom:<name>" against catalog.
func ParseAction(raw string, catalog Catalog) (Action, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "none", "":
		return None{}, nil
	case "subsystem_reset", "srst", "ps_only_reset":
		return SubsystemReset(), nil
	case "system_reset":
		return SystemReset(), nil
	}

	name, ok := strings.CutPrefix(v, "custom:")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	name = strings.TrimSpace(name)
	h, ok := catalog[name]
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return Custom{Name: name, Handler: h}, nil
}

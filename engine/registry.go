package engine

import "fmt"

// Build returns the engines named in order. Browser engines ("rod",
// "rod-stealth") are skipped when rodFetch is nil. Unknown names are an
// error.
func Build(order []string, rodFetch RodFetchFunc) ([]Engine, error) {
	engines := make([]Engine, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "http":
			engines = append(engines, NewHTTPEngine())
		case "rod", "rod-stealth":
			if rodFetch == nil {
				continue
			}
			engines = append(engines, NewRodEngine(rodFetch, name == "rod-stealth"))
		default:
			return nil, fmt.Errorf("engine: unknown engine %q", name)
		}
	}
	return engines, nil
}

// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex is used to validate the name part of an address, e.g. `aristotle` or `plato-republic_2`.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	kindStr, name, ok := strings.Cut(rawID, ".")
	if !ok {
		return Address{}, fmt.Errorf("identifier %q must have the form kind.name", rawID)
	}

	kind := Kind(kindStr)
	if !kind.Valid() {
		return Address{}, fmt.Errorf("unknown node kind %q in identifier %q", kindStr, rawID)
	}
	if !nameRegex.MatchString(name) {
		return Address{}, fmt.Errorf("invalid node name %q in identifier %q", name, rawID)
	}

	return Address{Kind: kind, Name: name}, nil
}

// ParseAll parses every identifier, stopping at the first failure.
func ParseAll(rawIDs []string) ([]Address, error) {
	out := make([]Address, 0, len(rawIDs))
	for _, raw := range rawIDs {
		addr, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// internal/nodeid/address.go
package nodeid

// String serializes the Address into its canonical `kind.name` representation.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	return string(a.Kind) + "." + a.Name
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	return a.Kind == "" && a.Name == ""
}

// Less orders addresses by their canonical string, giving callers a
// deterministic tiebreak when sorting.
func (a Address) Less(other Address) bool {
	return a.String() < other.String()
}

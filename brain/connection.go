package brain

// ConnectionType tags a connection's propagation semantics.
// Modulatory and Gating are reserved for future affinity-based effects and
// currently behave exactly like Standard.
type ConnectionType uint8

const (
	ConnStandard ConnectionType = iota
	ConnModulatory
	ConnGating
)

// String returns the display name of the connection type.
func (t ConnectionType) String() string {
	switch t {
	case ConnStandard:
		return "standard"
	case ConnModulatory:
		return "modulatory"
	case ConnGating:
		return "gating"
	}
	return "unknown"
}

// Connection is a directed weighted edge between two node IDs.
// Connections are disabled rather than removed when deactivated, so a later
// mutation can re-enable them.
type Connection struct {
	From    NodeID
	To      NodeID
	Weight  float64
	Type    ConnectionType
	Enabled bool
}

// connectionTypeFor derives a connection type from the endpoint affinities.
// The determination is intentionally a stub: every pairing maps to Standard
// until modulatory/gating semantics are defined.
func connectionTypeFor(from, to Affinity) ConnectionType {
	_ = from
	_ = to
	return ConnStandard
}

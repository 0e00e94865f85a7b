// Package genome serializes brains to value records and persists them.
// A decoded brain is evaluatable bit-for-bit: every node, connection, and
// module field round-trips, along with the ID counters and meta-template
// references. The name cache is derived state and is rebuilt on decode,
// never stored.
package genome

import "github.com/pthm-cable/vat/brain"

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NodeRecord mirrors brain.Node field for field.
type NodeRecord struct {
	ID             int32   `json:"id"`
	Kind           uint8   `json:"kind"`
	Affinity       uint8   `json:"affinity"`
	Activation     uint8   `json:"activation"`
	Bias           float64 `json:"bias"`
	Accumulator    float64 `json:"accumulator"`
	Output         float64 `json:"output"`
	FrameCounter   int64   `json:"frame_counter"`
	UpdateInterval int32   `json:"update_interval"`
	Module         int32   `json:"module"`
	Tier           uint8   `json:"tier"`
}

// ConnectionRecord mirrors brain.Connection.
type ConnectionRecord struct {
	From    int32   `json:"from"`
	To      int32   `json:"to"`
	Weight  float64 `json:"weight"`
	Type    uint8   `json:"type"`
	Enabled bool    `json:"enabled"`
}

// ModuleRecord mirrors brain.ModuleInstance.
type ModuleRecord struct {
	ID          int32              `json:"id"`
	Definition  int32              `json:"definition"`
	Name        string             `json:"name"`
	Type        uint8              `json:"type"`
	Category    string             `json:"category"`
	Tier        uint8              `json:"tier"`
	InputPorts  []string           `json:"input_ports"`
	OutputPorts []string           `json:"output_ports"`
	InputNodes  []int32            `json:"input_nodes"`
	OutputNodes []int32            `json:"output_nodes"`
	State       map[string]float64 `json:"state,omitempty"`
}

// TemplateRecord mirrors brain.MetaTemplate. Templates are serialized once
// and re-shared by reference across the brains that referenced them.
type TemplateRecord struct {
	ID          int32              `json:"id"`
	Name        string             `json:"name"`
	Nodes       []NodeRecord       `json:"nodes"`
	Connections []ConnectionRecord `json:"connections"`
}

// BrainRecord is the full serialized form of one brain.
type BrainRecord struct {
	VersionedRecord
	ID           string             `json:"id"`
	Seed         int64              `json:"seed"`
	Nodes        []NodeRecord       `json:"nodes"`
	Connections  []ConnectionRecord `json:"connections"`
	Modules      []ModuleRecord     `json:"modules"`
	Templates    []TemplateRecord   `json:"templates"`
	NextNodeID   int32              `json:"next_node_id"`
	NextModuleID int32              `json:"next_module_id"`
}

func nodeToRecord(n brain.Node) NodeRecord {
	return NodeRecord{
		ID:             int32(n.ID),
		Kind:           uint8(n.Kind),
		Affinity:       uint8(n.Affinity),
		Activation:     uint8(n.Activation),
		Bias:           n.Bias,
		Accumulator:    n.Accumulator,
		Output:         n.Output,
		FrameCounter:   n.FrameCounter,
		UpdateInterval: n.UpdateInterval,
		Module:         int32(n.Module),
		Tier:           n.Tier,
	}
}

func recordToNode(r NodeRecord) brain.Node {
	return brain.Node{
		ID:             brain.NodeID(r.ID),
		Kind:           brain.NodeKind(r.Kind),
		Affinity:       brain.Affinity(r.Affinity),
		Activation:     brain.Activation(r.Activation),
		Bias:           r.Bias,
		Accumulator:    r.Accumulator,
		Output:         r.Output,
		FrameCounter:   r.FrameCounter,
		UpdateInterval: r.UpdateInterval,
		Module:         brain.ModuleID(r.Module),
		Tier:           r.Tier,
	}
}

func connToRecord(c brain.Connection) ConnectionRecord {
	return ConnectionRecord{
		From:    int32(c.From),
		To:      int32(c.To),
		Weight:  c.Weight,
		Type:    uint8(c.Type),
		Enabled: c.Enabled,
	}
}

func recordToConn(r ConnectionRecord) brain.Connection {
	return brain.Connection{
		From:    brain.NodeID(r.From),
		To:      brain.NodeID(r.To),
		Weight:  r.Weight,
		Type:    brain.ConnectionType(r.Type),
		Enabled: r.Enabled,
	}
}

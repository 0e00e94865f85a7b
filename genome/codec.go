package genome

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/pthm-cable/vat/brain"
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Encode snapshots a brain into a value record. Nodes are emitted in ID order
// so identical brains produce identical payloads.
func Encode(id string, b *brain.Brain) BrainRecord {
	rec := BrainRecord{
		VersionedRecord: VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:   id,
		Seed: b.Seed,
	}

	ids := make([]brain.NodeID, 0, len(b.Nodes))
	for nodeID := range b.Nodes {
		ids = append(ids, nodeID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, nodeID := range ids {
		rec.Nodes = append(rec.Nodes, nodeToRecord(b.Nodes[nodeID]))
	}

	for _, c := range b.Connections {
		rec.Connections = append(rec.Connections, connToRecord(c))
	}

	for i := range b.Modules {
		m := &b.Modules[i]
		mr := ModuleRecord{
			ID:          int32(m.ID),
			Definition:  m.Definition,
			Name:        m.Name,
			Type:        uint8(m.Type),
			Category:    m.Category,
			Tier:        m.Tier,
			InputPorts:  append([]string(nil), m.InputPorts...),
			OutputPorts: append([]string(nil), m.OutputPorts...),
		}
		for _, id := range m.InputNodes {
			mr.InputNodes = append(mr.InputNodes, int32(id))
		}
		for _, id := range m.OutputNodes {
			mr.OutputNodes = append(mr.OutputNodes, int32(id))
		}
		if len(m.State) > 0 {
			mr.State = make(map[string]float64, len(m.State))
			for k, v := range m.State {
				mr.State[k] = v
			}
		}
		rec.Modules = append(rec.Modules, mr)
	}

	for _, tpl := range b.Templates {
		tr := TemplateRecord{ID: tpl.ID, Name: tpl.Name}
		for _, n := range tpl.Nodes {
			tr.Nodes = append(tr.Nodes, nodeToRecord(n))
		}
		for _, c := range tpl.Connections {
			tr.Connections = append(tr.Connections, connToRecord(c))
		}
		rec.Templates = append(rec.Templates, tr)
	}

	nextNode, nextModule := b.Counters()
	rec.NextNodeID = int32(nextNode)
	rec.NextModuleID = int32(nextModule)
	return rec
}

// Decode reconstructs an evaluatable brain from a record. Connection endpoints
// are validated against the node set; a payload that references missing nodes
// is rejected rather than patched.
func Decode(rec BrainRecord) (*brain.Brain, error) {
	if rec.SchemaVersion != CurrentSchemaVersion || rec.CodecVersion != CurrentCodecVersion {
		return nil, fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, rec.SchemaVersion, rec.CodecVersion)
	}

	b := brain.New(rec.Seed)
	for _, nr := range rec.Nodes {
		b.AddNode(recordToNode(nr))
	}

	for _, cr := range rec.Connections {
		c := recordToConn(cr)
		if _, ok := b.Nodes[c.From]; !ok {
			return nil, fmt.Errorf("connection references missing node %d", c.From)
		}
		if _, ok := b.Nodes[c.To]; !ok {
			return nil, fmt.Errorf("connection references missing node %d", c.To)
		}
		b.Connections = append(b.Connections, c)
	}

	for _, mr := range rec.Modules {
		inst := brain.ModuleInstance{
			ID:          brain.ModuleID(mr.ID),
			Definition:  mr.Definition,
			Name:        mr.Name,
			Type:        brain.ModuleType(mr.Type),
			Category:    mr.Category,
			Tier:        mr.Tier,
			InputPorts:  append([]string(nil), mr.InputPorts...),
			OutputPorts: append([]string(nil), mr.OutputPorts...),
		}
		if len(inst.InputPorts) != len(mr.InputNodes) || len(inst.OutputPorts) != len(mr.OutputNodes) {
			return nil, fmt.Errorf("module %q port/node count mismatch", mr.Name)
		}
		for _, id := range mr.InputNodes {
			inst.InputNodes = append(inst.InputNodes, brain.NodeID(id))
		}
		for _, id := range mr.OutputNodes {
			inst.OutputNodes = append(inst.OutputNodes, brain.NodeID(id))
		}
		if len(mr.State) > 0 {
			inst.State = make(map[string]float64, len(mr.State))
			for k, v := range mr.State {
				inst.State[k] = v
			}
		}
		b.Modules = append(b.Modules, inst)
	}

	for _, tr := range rec.Templates {
		tpl := &brain.MetaTemplate{ID: tr.ID, Name: tr.Name}
		for _, nr := range tr.Nodes {
			tpl.Nodes = append(tpl.Nodes, recordToNode(nr))
		}
		for _, cr := range tr.Connections {
			tpl.Connections = append(tpl.Connections, recordToConn(cr))
		}
		b.Templates = append(b.Templates, tpl)
	}

	b.SetCounters(brain.NodeID(rec.NextNodeID), brain.ModuleID(rec.NextModuleID))
	b.RebuildNameCache()
	return b, nil
}

// Marshal serializes a record to JSON.
func Marshal(rec BrainRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// Unmarshal parses a JSON payload into a record and checks its version.
func Unmarshal(data []byte) (BrainRecord, error) {
	var rec BrainRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return BrainRecord{}, err
	}
	if rec.SchemaVersion != CurrentSchemaVersion || rec.CodecVersion != CurrentCodecVersion {
		return BrainRecord{}, fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, rec.SchemaVersion, rec.CodecVersion)
	}
	return rec, nil
}

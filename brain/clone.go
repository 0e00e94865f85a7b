package brain

// Clone produces an offspring brain with identical node, connection, and
// module values but fully independent storage. Meta-module templates are the
// one deliberate exception: the template pointers are shared, so template
// mutation propagates to every brain descended from the referencing one.
// ID counters carry forward, never reset, preserving uniqueness across the
// lineage. The name cache is rebuilt on the clone, never copied.
func (b *Brain) Clone() *Brain {
	out := &Brain{
		Nodes:        make(map[NodeID]Node, len(b.Nodes)),
		Connections:  append([]Connection(nil), b.Connections...),
		Modules:      make([]ModuleInstance, 0, len(b.Modules)),
		Templates:    append([]*MetaTemplate(nil), b.Templates...),
		Seed:         b.Seed,
		nextNodeID:   b.nextNodeID,
		nextModuleID: b.nextModuleID,
		nameCache:    make(map[string]NodeID, len(b.nameCache)),
	}
	for id, node := range b.Nodes {
		out.Nodes[id] = node
	}
	for i := range b.Modules {
		out.Modules = append(out.Modules, b.Modules[i].clone())
	}
	out.RebuildNameCache()
	return out
}

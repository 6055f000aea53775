// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package mdtree

// CreateEntry is one pending `Create Item` payload, queued at a path until
// C3/C4 pass the section it belongs under (spec.md §9 "Merge-action tree").
type CreateEntry struct {
	SectionName string
	SortKey     string
	Content     string
}

// MergeNode is one node of the tagged merge-action tree: an optional
// `##CHANGE##` payload, an optional `##DELETE##` marker, a pending
// `##CREATE##` list, and named children keyed by (section_name,
// section_key). Consumed entries are cleared as C3/C4 descend so nothing is
// applied twice.
type MergeNode struct {
	Change  *string
	Delete  bool
	Creates []CreateEntry
	Stray   []CreateEntry // Create entries whose section was never visited

	children map[string]*MergeNode
}

// NewMergeNode returns an empty node.
func NewMergeNode() *MergeNode {
	return &MergeNode{children: make(map[string]*MergeNode)}
}

func childKey(sectionName, sectionKey string) string {
	return sectionName + "\x00" + sectionKey
}

// Child returns (creating if necessary) the named child node.
func (n *MergeNode) Child(sectionName, sectionKey string) *MergeNode {
	ck := childKey(sectionName, sectionKey)
	if c, ok := n.children[ck]; ok {
		return c
	}
	c := NewMergeNode()
	n.children[ck] = c
	return c
}

// Lookup returns the named child node without creating it.
func (n *MergeNode) Lookup(sectionName, sectionKey string) (*MergeNode, bool) {
	c, ok := n.children[childKey(sectionName, sectionKey)]
	return c, ok
}

// TakeChange consumes and clears this node's ##CHANGE## payload, if any.
func (n *MergeNode) TakeChange() (string, bool) {
	if n.Change == nil {
		return "", false
	}
	v := *n.Change
	n.Change = nil
	return v, true
}

// TakeDelete consumes and clears this node's ##DELETE## marker.
func (n *MergeNode) TakeDelete() bool {
	v := n.Delete
	n.Delete = false
	return v
}

// TakeCreates consumes and clears this node's pending ##CREATE## list.
func (n *MergeNode) TakeCreates() []CreateEntry {
	v := n.Creates
	n.Creates = nil
	return v
}

// ChildNames returns the section names that have at least one child node,
// in no particular order; callers sort as needed.
func (n *MergeNode) ChildNames() []string {
	seen := map[string]bool{}
	var names []string
	for ck := range n.children {
		name, _, _ := splitChildKey(ck)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func splitChildKey(ck string) (name, key string, ok bool) {
	for i := 0; i < len(ck); i++ {
		if ck[i] == 0 {
			return ck[:i], ck[i+1:], true
		}
	}
	return ck, "", false
}

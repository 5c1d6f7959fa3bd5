package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/inplace/pkg/dom"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Append new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchReplaceNode PatchOp = 0x06 // Replace node entirely
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// ParseOp returns the PatchOp named name, as produced by String.
func ParseOp(name string) (PatchOp, bool) {
	for op := PatchSetText; op <= PatchReplaceNode; op++ {
		if op.String() == name {
			return op, true
		}
	}
	return 0, false
}

// Patch is one mutation applied to the live tree.
//
// Path holds the element-child indices from the live root to the element
// the patch applies to. Text patches, and replacements of a text node, use
// the path of the enclosing element with Index giving the position of the
// text among all of its child nodes. InsertNode uses the parent's path.
// Patches are listed in application order, so each path is valid against
// the tree as left by the patches before it.
type Patch struct {
	Op    PatchOp
	Path  []int
	Index int
	Key   string     // Attribute key (SetAttr/RemoveAttr)
	Value string     // Text or attribute value
	Node  *html.Node // Inserted or replacement node, now part of the live tree
	Old   *html.Node // Removed or replaced live node
}

type patchJSON struct {
	Op    string `json:"op"`
	Path  []int  `json:"path"`
	Index int    `json:"index,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// MarshalJSON encodes the patch for the live preview stream. Nodes are
// rendered to markup, which is written without HTML escaping.
func (p Patch) MarshalJSON() ([]byte, error) {
	out := patchJSON{
		Op:    p.Op.String(),
		Path:  p.Path,
		Index: p.Index,
		Key:   p.Key,
		Value: p.Value,
	}
	if out.Path == nil {
		out.Path = []int{}
	}
	if p.Node != nil {
		markup, err := dom.Render(p.Node)
		if err != nil {
			return nil, err
		}
		out.HTML = markup
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a patch written by MarshalJSON. Markup is parsed
// into a detached node; Old is never restored.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var in patchJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	op, ok := ParseOp(in.Op)
	if !ok {
		return fmt.Errorf("unknown patch op %q", in.Op)
	}
	*p = Patch{Op: op, Path: in.Path, Index: in.Index, Key: in.Key, Value: in.Value}
	if in.HTML == "" {
		return nil
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(in.HTML), ctx)
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		p.Node = nodes[0]
	}
	return nil
}

// Count returns the number of patches per op name.
func Count(patches []Patch) map[string]int {
	counts := make(map[string]int)
	for _, p := range patches {
		counts[p.Op.String()]++
	}
	return counts
}

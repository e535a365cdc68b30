package h2d

// --- Tree manipulation ---

// AddChild appends child to parent's children, adding a Node component to
// parent when missing. If child already has a parent, it is removed from that
// parent first. Panics if child is NoEntity or child is an ancestor of parent
// (cycle).
func AddChild(w *World, parent, child Entity) {
	n := len(Children(w, parent))
	AddChildAt(w, parent, child, n)
}

// AddChildAt inserts child at the given index among parent's children.
// Same reparenting and cycle-check behavior as AddChild.
func AddChildAt(w *World, parent, child Entity, index int) {
	if child == NoEntity {
		panic("h2d: cannot add nil child")
	}
	if isAncestor(w, child, parent) {
		panic("h2d: adding child would create a cycle")
	}
	if old, ok := Parent(w, child); ok {
		removeChildByID(w, old, child)
	}
	pe := w.Entry(parent)
	if !pe.HasComponent(Node) {
		pe.AddComponent(Node)
	}
	node := Node.Get(pe)
	if index < 0 || index > len(node.Children) {
		panic("h2d: child index out of range")
	}
	node.Children = append(node.Children, NoEntity)
	copy(node.Children[index+1:], node.Children[index:])
	node.Children[index] = child

	setComponent(w.Entry(child), ParentNode, ParentNodeData{Parent: parent})
}

// RemoveChild detaches child from parent. Panics if child's parent is not
// parent.
func RemoveChild(w *World, parent, child Entity) {
	if p, ok := Parent(w, child); !ok || p != parent {
		panic("h2d: child's parent is not this node")
	}
	removeChildByID(w, parent, child)
	w.Entry(child).RemoveComponent(ParentNode)
}

// Children returns the child list of e in draw order. The returned slice
// MUST NOT be mutated by the caller.
func Children(w *World, e Entity) []Entity {
	if !w.Valid(e) {
		return nil
	}
	entry := w.Entry(e)
	if !entry.HasComponent(Node) {
		return nil
	}
	return Node.Get(entry).Children
}

// Parent returns the parent of e.
func Parent(w *World, e Entity) (Entity, bool) {
	if !w.Valid(e) {
		return NoEntity, false
	}
	entry := w.Entry(e)
	if !entry.HasComponent(ParentNode) {
		return NoEntity, false
	}
	p := ParentNode.Get(entry).Parent
	return p, p != NoEntity
}

// Walk visits root and its descendants in pre-order. Returning false from
// fn skips the children of the visited entity. Children that are no longer
// valid are skipped.
func Walk(w *World, root Entity, fn func(e Entity, depth int) bool) {
	type frame struct {
		e     Entity
		depth int
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !w.Valid(f.e) {
			continue
		}
		if !fn(f.e, f.depth) {
			continue
		}
		children := Children(w, f.e)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
}

// Descendants returns every descendant of root in pre-order, excluding root.
func Descendants(w *World, root Entity) []Entity {
	var out []Entity
	Walk(w, root, func(e Entity, _ int) bool {
		if e != root {
			out = append(out, e)
		}
		return true
	})
	return out
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(w *World, candidate, node Entity) bool {
	for p, ok := node, true; ok; p, ok = Parent(w, p) {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByID removes child from parent's children without touching
// the child's ParentNode.
func removeChildByID(w *World, parent, child Entity) bool {
	if !w.Valid(parent) {
		return false
	}
	entry := w.Entry(parent)
	if !entry.HasComponent(Node) {
		return false
	}
	node := Node.Get(entry)
	for i, c := range node.Children {
		if c == child {
			copy(node.Children[i:], node.Children[i+1:])
			node.Children = node.Children[:len(node.Children)-1]
			return true
		}
	}
	return false
}

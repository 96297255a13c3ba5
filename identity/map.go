package identity

import "sort"

// Map is an ordered multi-map from namespace to identity items.
//
// Namespace lookup is an exact, case-sensitive match. Namespaces iterate in the order
// they were first added and items keep their insertion order. A namespace whose last
// item is removed disappears from the map.
//
// The zero value is not usable; call NewMap. Read methods accept a nil *Map and treat it
// as empty.
type Map struct {
	namespaces []string
	items      map[string][]Item
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{items: make(map[string][]Item)}
}

// AddItem adds item to namespace. If the namespace already holds an item with the same
// id, that item is replaced at its position; otherwise item is appended.
func (m *Map) AddItem(item Item, namespace string) {
	existing, ok := m.items[namespace]
	if !ok {
		m.namespaces = append(m.namespaces, namespace)
		m.items[namespace] = []Item{item}
		return
	}

	for idx := range existing {
		if existing[idx].Equal(item) {
			existing[idx] = item
			return
		}
	}
	m.items[namespace] = append(existing, item)
}

// RemoveItem removes the item with the same id from namespace and reports whether
// anything was removed. Removing from an absent namespace or an absent item is a no-op.
func (m *Map) RemoveItem(item Item, namespace string) bool {
	existing, ok := m.items[namespace]
	if !ok {
		return false
	}

	for idx := range existing {
		if !existing[idx].Equal(item) {
			continue
		}

		remaining := append(existing[:idx:idx], existing[idx+1:]...)
		if len(remaining) == 0 {
			m.dropNamespace(namespace)
		} else {
			m.items[namespace] = remaining
		}
		return true
	}
	return false
}

// Merge adds every item of other, namespace by namespace, with AddItem semantics.
func (m *Map) Merge(other *Map) {
	for _, ns := range other.Namespaces() {
		for _, item := range other.items[ns] {
			m.AddItem(item, ns)
		}
	}
}

// Remove removes every item of other, namespace by namespace, with RemoveItem
// semantics. It reports whether at least one item was removed.
func (m *Map) Remove(other *Map) bool {
	removed := false
	for _, ns := range other.Namespaces() {
		for _, item := range other.items[ns] {
			if m.RemoveItem(item, ns) {
				removed = true
			}
		}
	}
	return removed
}

// Namespaces returns the namespaces in first-seen order.
func (m *Map) Namespaces() []string {
	if m == nil || len(m.namespaces) == 0 {
		return nil
	}
	out := make([]string, len(m.namespaces))
	copy(out, m.namespaces)
	return out
}

// Items returns the items of namespace in order, or nil when the namespace is absent.
func (m *Map) Items(namespace string) []Item {
	if m == nil {
		return nil
	}
	items, ok := m.items[namespace]
	if !ok {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// IsEmpty reports whether the map has no namespaces.
func (m *Map) IsEmpty() bool {
	return m == nil || len(m.namespaces) == 0
}

// Len returns the number of namespaces.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.namespaces)
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := NewMap()
	out.Merge(m)
	return out
}

// Compact returns a copy of m without items whose id is empty. Namespaces left
// without items are not created.
func (m *Map) Compact() *Map {
	out := NewMap()
	for _, ns := range m.Namespaces() {
		for _, item := range m.items[ns] {
			if item.ID == "" {
				continue
			}
			out.AddItem(item, ns)
		}
	}
	return out
}

// Equal reports whether both maps hold the same namespaces and, per namespace, the same
// items in the same order with identical state and primary flag. Namespace order is
// not compared.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, ns := range m.Namespaces() {
		mine, theirs := m.items[ns], other.Items(ns)
		if len(mine) != len(theirs) {
			return false
		}
		for idx := range mine {
			if mine[idx] != theirs[idx] {
				return false
			}
		}
	}
	return true
}

// ToXDM returns the map in XDM shape. An empty map yields an empty result unless
// allowEmpty is set, in which case it yields {"identityMap": {}}.
func (m *Map) ToXDM(allowEmpty bool) map[string]any {
	if m.IsEmpty() && !allowEmpty {
		return map[string]any{}
	}

	identityMap := make(map[string]any, m.Len())
	for _, ns := range m.Namespaces() {
		items := make([]any, 0, len(m.items[ns]))
		for _, item := range m.items[ns] {
			items = append(items, item.ToXDM())
		}
		identityMap[ns] = items
	}
	return map[string]any{KeyIdentityMap: identityMap}
}

// MapFromXDM parses the identityMap entry of data. Items whose id is missing, null or
// empty are dropped, as are entries that are not objects. Namespaces left without items
// are not created. Since Go maps are unordered, namespaces are added in sorted order;
// use DecodeXDM to keep document order.
func MapFromXDM(data map[string]any) *Map {
	m := NewMap()
	identityMap, ok := data[KeyIdentityMap].(map[string]any)
	if !ok {
		return m
	}

	namespaces := make([]string, 0, len(identityMap))
	for ns := range identityMap {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		m.addParsed(ns, identityMap[ns])
	}
	return m
}

// addParsed adds the valid items of one namespace entry taken from external data.
func (m *Map) addParsed(namespace string, entries any) {
	for _, entry := range itemEntries(entries) {
		item, ok := ItemFromXDM(entry)
		if !ok || item.ID == "" {
			continue
		}
		m.AddItem(item, namespace)
	}
}

func itemEntries(v any) []map[string]any {
	switch entries := v.(type) {
	case []map[string]any:
		return entries
	case []any:
		out := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			if obj, ok := entry.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	default:
		return nil
	}
}

func (m *Map) dropNamespace(namespace string) {
	delete(m.items, namespace)
	for idx, ns := range m.namespaces {
		if ns == namespace {
			m.namespaces = append(m.namespaces[:idx], m.namespaces[idx+1:]...)
			return
		}
	}
}

package domain

// AssetRegistry is an ordered, duplicate-free set of asset identifiers with
// O(1) membership tests and O(1) swap-with-last removal. Enumeration order
// follows insertion order but is NOT stable across removals: removing an
// asset moves the current tail into its slot.
type AssetRegistry struct {
	entries []string
	index   map[string]int
}

// NewAssetRegistry creates an empty registry.
func NewAssetRegistry() *AssetRegistry {
	return &AssetRegistry{index: make(map[string]int)}
}

// Register appends an asset if it is not already a member.
// Returns true if the asset was added.
func (r *AssetRegistry) Register(asset string) bool {
	if _, ok := r.index[asset]; ok {
		return false
	}
	r.index[asset] = len(r.entries)
	r.entries = append(r.entries, asset)
	return true
}

// Contains reports whether the asset is registered.
func (r *AssetRegistry) Contains(asset string) bool {
	_, ok := r.index[asset]
	return ok
}

// Position returns the asset's slot in the enumeration, or -1 if absent.
func (r *AssetRegistry) Position(asset string) int {
	pos, ok := r.index[asset]
	if !ok {
		return -1
	}
	return pos
}

// Remove deletes the asset via swap-with-last and truncation.
// It returns the slot the asset occupied, the identifier of the asset that
// was moved into that slot ("" if the target was the tail), and whether the
// asset was a member at all.
func (r *AssetRegistry) Remove(asset string) (position int, moved string, ok bool) {
	pos, found := r.index[asset]
	if !found {
		return 0, "", false
	}

	last := len(r.entries) - 1
	if pos != last {
		moved = r.entries[last]
		r.entries[pos] = moved
		r.index[moved] = pos
	}
	r.entries = r.entries[:last]
	delete(r.index, asset)
	return pos, moved, true
}

// List returns a snapshot copy of the registered assets in enumeration order.
func (r *AssetRegistry) List() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered assets.
func (r *AssetRegistry) Len() int {
	return len(r.entries)
}

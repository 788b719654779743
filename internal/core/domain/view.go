package domain

// SelectedItem identifies the entity a session currently has selected in the
// hierarchy view. Identity is by ID, never by reference into a snapshot.
type SelectedItem struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// PinnedItem restricts the tree view to a single subtree.
type PinnedItem struct {
	Type EntityType `json:"type"`
	ID   string     `json:"id"`
}

// ViewState is the per-session derived UI state for the hierarchy tree. It is
// re-derived against each fresh snapshot during reconciliation.
type ViewState struct {
	Expanded     map[string]bool
	Selected     *SelectedItem
	Pinned       *PinnedItem
	StatusFilter map[VersionStatus]bool
}

// NewViewState returns the mount-time defaults: nothing expanded, nothing
// selected, every version status visible.
func NewViewState() ViewState {
	filter := make(map[VersionStatus]bool, len(AllStatuses()))
	for _, status := range AllStatuses() {
		filter[status] = true
	}
	return ViewState{
		Expanded:     make(map[string]bool),
		StatusFilter: filter,
	}
}

// Clone returns a deep copy so callers can hand state across goroutines
// without sharing the maps.
func (v ViewState) Clone() ViewState {
	out := ViewState{
		Expanded:     make(map[string]bool, len(v.Expanded)),
		StatusFilter: make(map[VersionStatus]bool, len(v.StatusFilter)),
	}
	for id, ok := range v.Expanded {
		out.Expanded[id] = ok
	}
	for status, visible := range v.StatusFilter {
		out.StatusFilter[status] = visible
	}
	if v.Selected != nil {
		sel := *v.Selected
		out.Selected = &sel
	}
	if v.Pinned != nil {
		pin := *v.Pinned
		out.Pinned = &pin
	}
	return out
}

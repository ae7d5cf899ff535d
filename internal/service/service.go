package service

// Service is the list store contract. The terminal UI, the CLI and the remote
// dispatcher all talk to one Service.
//
// An empty list name always means "the active list at the moment the call
// executes", not at the moment it was issued.
type Service interface {
	// AddItem appends an undone item to the list.
	AddItem(list, text string) error

	// ListItems returns a copy of the list's items. A missing list yields an
	// empty slice.
	ListItems(list string) []Item

	// ToggleItem flips the done flag of the item at index.
	ToggleItem(list string, index int) error

	// RemoveItem deletes the item at index, shifting later items down.
	RemoveItem(list string, index int) error

	// ClearDone removes every done item and returns how many were removed.
	ClearDone(list string) int

	// MoveItem relocates the item at from so that it ends up at to.
	MoveItem(list string, from, to int) error

	// CreateList adds an empty list and makes it active. An existing name is
	// left untouched (and not activated); created reports which case applied.
	CreateList(name string) (created bool, err error)

	// SwitchActiveList makes an existing list active.
	SwitchActiveList(name string) error

	// ListNames returns all list names in creation order and the active name.
	ListNames() ListNames

	// DeleteList removes a list. The default list cannot be deleted.
	DeleteList(name string) error

	// Snapshot returns a deep copy of the whole state.
	Snapshot() Snapshot

	// Merge creates missing lists (without activating them) and appends the
	// given items. It returns the number of items added.
	Merge(lists []NamedList) (int, error)

	// Subscribe registers fn to run after every successful mutation.
	Subscribe(fn func()) (cancel func())
}

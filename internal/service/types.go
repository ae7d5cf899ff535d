// Package service defines the list/item model shared by the store, the remote
// dispatcher, the terminal UI and the CLI.
package service

// DefaultList is the protected list every store always contains.
const DefaultList = "Personal"

// Item is a single entry in a list. It has no identity beyond its position.
type Item struct {
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// NamedList is one list together with its ordered items.
type NamedList struct {
	Name  string `json:"name" yaml:"name"`
	Items []Item `json:"items" yaml:"items"`
}

// Snapshot is a deep copy of the whole store state.
// Lists appear in creation order.
type Snapshot struct {
	Lists  []NamedList `json:"lists" yaml:"lists"`
	Active string      `json:"active" yaml:"active"`
}

// ListNames is the result of a list-names query.
type ListNames struct {
	Lists   []string `json:"lists"`
	Current string   `json:"current"`
}

// DefaultSnapshot returns the seed state used when nothing was persisted.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Lists:  []NamedList{{Name: DefaultList, Items: []Item{}}},
		Active: DefaultList,
	}
}

// Find returns the items of the named list.
func (s Snapshot) Find(name string) ([]Item, bool) {
	for _, l := range s.Lists {
		if l.Name == name {
			return l.Items, true
		}
	}
	return nil, false
}

// Names returns the list names in order.
func (s Snapshot) Names() []string {
	names := make([]string, len(s.Lists))
	for i, l := range s.Lists {
		names[i] = l.Name
	}
	return names
}

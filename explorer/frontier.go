package explorer

// Item is a domain waiting to be processed at a given depth.
type Item struct {
	Domain string
	Depth  int
}

// Frontier is the LIFO work-list that drives depth-first exploration.
type Frontier struct {
	items []Item
}

// Push adds an item on top of the stack.
func (f *Frontier) Push(item Item) {
	f.items = append(f.items, item)
}

// PushChildren pushes links at depth so that they pop in their original order.
func (f *Frontier) PushChildren(links []string, depth int) {
	for i := len(links) - 1; i >= 0; i-- {
		f.Push(Item{Domain: links[i], Depth: depth})
	}
}

// Pop removes and returns the top item.
func (f *Frontier) Pop() (Item, bool) {
	if len(f.items) == 0 {
		return Item{}, false
	}

	last := len(f.items) - 1
	item := f.items[last]
	f.items = f.items[:last]

	return item, true
}

// Len returns the number of pending items.
func (f *Frontier) Len() int {
	return len(f.items)
}

package cache

// lruNode links one key into the recency ring.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList is a circular list around a sentinel: root.next is the most
// recently used key and root.prev the least. The zero value is ready to use.
// It is not safe for concurrent use.
type lruList[K comparable] struct {
	root lruNode[K]
}

func (l *lruList[K]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// PushFront adds key as the most recently used and returns its node.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	l.lazyInit()
	n := &lruNode[K]{key: key}
	l.insertAfterRoot(n)
	return n
}

// MoveToFront marks n as the most recently used.
func (l *lruList[K]) MoveToFront(n *lruNode[K]) {
	if l.root.next == n {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	l.insertAfterRoot(n)
}

// RemoveOldest unlinks the least recently used key.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	n := l.root.prev
	if n == nil || n == &l.root {
		var zero K
		return zero, false
	}
	n.prev.next = &l.root
	l.root.prev = n.prev
	n.prev, n.next = nil, nil
	return n.key, true
}

func (l *lruList[K]) insertAfterRoot(n *lruNode[K]) {
	n.prev = &l.root
	n.next = l.root.next
	l.root.next.prev = n
	l.root.next = n
}

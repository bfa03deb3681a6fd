package uniprocessor

// chain is an intrusive, doubly-linked FIFO list of ready nodes for one
// priority level, grounded on RTEMS's Chain_Control concept referenced by
// schedulersmpimpl.h's #include of schedulersimpleimpl.h. There is no
// separate allocation per link: next/prev live directly on *node, matching
// Design Notes §9 "allocate-free hot paths matter".
type chain struct {
	head, tail *node
}

func (c *chain) empty() bool { return c.head == nil }

func (c *chain) pushBack(n *node) {
	n.prev = c.tail
	n.next = nil
	if c.tail != nil {
		c.tail.next = n
	} else {
		c.head = n
	}
	c.tail = n
}

func (c *chain) pushFront(n *node) {
	n.next = c.head
	n.prev = nil
	if c.head != nil {
		c.head.prev = n
	} else {
		c.tail = n
	}
	c.head = n
}

func (c *chain) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.next, n.prev = nil, nil
}

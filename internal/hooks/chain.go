package hooks

// PanicEvent is a recovered panic travelling down a hook chain.
type PanicEvent struct {
	Value     any
	Stack     []byte
	Goroutine string
}

// Link handles an event and may hand it to the next (older) link.
type Link func(ev PanicEvent, next func(PanicEvent))

// chain is an ordered list of links ending in a base handler. Links are
// called newest first and each next call moves strictly towards the base,
// so a link never re-enters itself.
type chain struct {
	base  func(PanicEvent)
	links []Link
}

func (c *chain) append(l Link) {
	c.links = append(c.links, l)
}

func (c *chain) snapshot() chain {
	links := make([]Link, len(c.links))
	copy(links, c.links)
	return chain{base: c.base, links: links}
}

func (c chain) dispatch(ev PanicEvent) {
	c.call(len(c.links)-1, ev)
}

func (c chain) call(idx int, ev PanicEvent) {
	if idx < 0 {
		if c.base != nil {
			c.base(ev)
		}
		return
	}
	c.links[idx](ev, func(next PanicEvent) { c.call(idx-1, next) })
}

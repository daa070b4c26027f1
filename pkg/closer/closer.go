package closer

type (
	Closer interface {
		Close() error
	}

	// CloserGroup closes its members in the order they were added.
	CloserGroup struct {
		closers []Closer
	}
)

func NewCloserGroup(closers ...Closer) *CloserGroup {
	return &CloserGroup{
		closers: closers,
	}
}

func (c *CloserGroup) Add(closer Closer) {
	c.closers = append(c.closers, closer)
}

// Close closes every member. All members are attempted; the first error is
// returned.
func (c *CloserGroup) Close() error {
	var first error

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

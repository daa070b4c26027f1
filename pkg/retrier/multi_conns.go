package retrier

// RetrierOpts configures retry behavior for multi-connection dials.
type RetrierOpts struct {
	Count    uint // Number of retry attempts (0 means no retries)
	Interval uint // Delay between retries in seconds
}

// MultiConnects establishes count connections of type T, applying the retry
// options to each dial when provided. It fails fast on the first connection
// error.
func MultiConnects[T any](count uint8, connFunc func() (T, error), retrierOpts *RetrierOpts) ([]T, error) {
	conns := make([]T, count)

	var err error

	for i := range conns {
		if retrierOpts != nil {
			conns[i], err = Connect(uint8(retrierOpts.Count), retrierOpts.Interval, connFunc)
		} else {
			conns[i], err = connFunc()
		}
		if err != nil {
			return nil, err
		}
	}

	return conns, nil
}

package retrier

import "time"

// Do runs op until it succeeds or the attempts are exhausted, sleeping
// between failed attempts. It returns nil on the first success, otherwise
// the last error.
func Do(retry uint8, sleep uint, op func() error) error {
	var err error

	for attempt := uint8(0); attempt < retry; attempt++ {
		if err = op(); err == nil {
			return nil
		}

		if attempt < retry-1 {
			time.Sleep(time.Duration(sleep) * time.Second)
		}
	}

	return err
}

package retrier

import "time"

// Connect attempts to establish a connection with retry logic, waiting
// sleep seconds between failed attempts. It returns the first successful
// connection, or the last error once the attempts are exhausted.
//
// Example:
//
//	conn, err := retrier.Connect(3, 2, func() (*amqp.Connection, error) {
//	    return amqp.Dial(cfg.Urls.Rabbitmq)
//	})
func Connect[T any](retry uint8, sleep uint, connector func() (T, error)) (T, error) {
	var (
		out T
		err error
	)

	for attempt := uint8(0); attempt < retry; attempt++ {
		out, err = connector()
		if err == nil {
			return out, nil
		}

		if attempt < retry-1 {
			time.Sleep(time.Duration(sleep) * time.Second)
		}
	}

	return out, err
}

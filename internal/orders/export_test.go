package orders

// SetEncodePayload swaps the event payload encoder until restore is called.
func SetEncodePayload(f func(any) ([]byte, error)) (restore func()) {
	prev := encodePayload
	encodePayload = f
	return func() { encodePayload = prev }
}

// internal/flash/transport.go
package flash

// Transport abstracts the SPI primitives the driver needs.
// Select/Deselect drive chip-select; Transmit/Receive move bytes while selected.
// Implementations own any retry policy; the driver never retries.
type Transport interface {
	Select() error
	Deselect() error
	Transmit(p []byte) error
	Receive(p []byte) error
}

// withSelected brackets one bus transaction with chip-select.
// Deselect runs on every exit path once Select succeeded.
// A Deselect failure is reported only if the body itself succeeded.
func withSelected(t Transport, fn func(t Transport) error) (err error) {
	if err := t.Select(); err != nil {
		return err
	}
	defer func() {
		if derr := t.Deselect(); derr != nil && err == nil {
			err = derr
		}
	}()
	return fn(t)
}

//go:build !linux

package serial

// DefaultTransport is the transport OpenerFor picks for an empty name.
const DefaultTransport = TransportPortable

// OpenTermios always fails off Linux; use OpenPortable.
func OpenTermios(cfg Config) (Port, error) {
	return nil, ErrNoTermios
}

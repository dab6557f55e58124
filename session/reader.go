package session

import (
	"strings"
	"unicode"

	"github.com/luhtfiimanal/go-poketrader/serial"
)

// Inbound is one item on the queue between the line reader and the
// controller. A non-nil Err is the sentinel for a lost connection.
type Inbound struct {
	Line string
	Err  error
}

// IsSentinel reports whether the item signals connection loss.
func (in Inbound) IsSentinel() bool {
	return in.Err != nil
}

// decodeLine turns a raw line into text: invalid UTF-8 becomes U+FFFD and
// trailing whitespace, including a CR from CRLF devices, is dropped.
func decodeLine(raw string) string {
	return strings.TrimRightFunc(strings.ToValidUTF8(raw, "�"), unicode.IsSpace)
}

// readLines is the line reader goroutine body: it pumps decoded, non-empty
// lines from port into out until the port fails or is closed. A failure is
// forwarded once as a sentinel. out is closed on return; it has no other
// producer.
//
// Sends also watch done so a reader whose session has already gone away
// never blocks on a full queue.
func readLines(port serial.Port, out chan<- Inbound, done <-chan struct{}) {
	defer close(out)

	push := func(in Inbound) bool {
		select {
		case out <- in:
			return true
		case <-done:
			return false
		}
	}

	port.ReadLinesLoop(
		func(raw string) {
			if line := decodeLine(raw); line != "" {
				push(Inbound{Line: line})
			}
		},
		func(err error) {
			push(Inbound{Err: err})
		},
	)
}

// Package serial provides the line-oriented serial transport used to talk to
// the trade device.
//
// Two transports implement Port:
//   - TermiosPort: raw syscall-based serial I/O on Linux, no buffering delays,
//     poll with a bounded timeout and a self-pipe for killability
//   - PortablePort: go.bug.st/serial, for hosts without termios
//
// OpenerFor("") and OpenDefault pick DefaultTransport, which is termios on
// Linux and the portable transport elsewhere.
//
// Both read newline-delimited lines (default "\n") and can be closed from any
// goroutine, which makes a running ReadLinesLoop return.
//
// Example usage:
//
//	cfg := serial.Config{
//	    Device:   "/dev/ttyACM0",
//	    BaudRate: serial.DefaultBaudRate,
//	}
//	port, err := serial.OpenTermios(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	go port.ReadLinesLoop(
//	    func(line string) {
//	        fmt.Println("Received:", line)
//	    },
//	    func(err error) {
//	        log.Println("Read error:", err)
//	    },
//	)
//
//	if err := port.WriteLine("LIST_POKEMON", "\n"); err != nil {
//	    log.Println("Write failed:", err)
//	}
//
// ListPorts enumerates candidate devices for a port picker.
package serial

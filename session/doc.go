/*
Package session drives a conversation with a Pokémon storage and trade
device over a serial link.

A Session owns at most one connection at a time. Connecting starts a line
reader goroutine that decodes device output and queues it; the controller
side consumes the queue with Drain, either from a UI tick or from Run:

	rec := session.NewRecorder(100)
	s := session.New(session.Config{Open: serial.OpenTermios, Observer: rec})
	if err := s.Connect("/dev/ttyACM0"); err != nil {
		log.Fatal(err)
	}
	defer s.Disconnect()
	go s.Run(ctx)

Trading is two user steps: highlight an entity and mark it with
MarkForTrade (SELECT_POKEMON), then InitiateTrade (INITIATE_TRADE). The
device answers asynchronously; answers surface through the Observer as
status messages.

A read or write failure ends the connection. Nothing reconnects
automatically.
*/
package session

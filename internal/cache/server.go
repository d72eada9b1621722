package cache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

// Serve accepts connections on l and answers each with Handle until l is
// closed. Closing l makes Serve return nil.
func Serve(l net.Listener, kv KV) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return err
		}
		go serveConn(conn, kv)
	}
}

func serveConn(conn net.Conn, kv KV) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		if err := enc.Encode(Handle(kv, req)); err != nil {
			return
		}
	}
}

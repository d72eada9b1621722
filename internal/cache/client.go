package cache

import (
	"encoding/json"
	"errors"
	"net"
	"time"
)

const dialTimeout = 500 * time.Millisecond

// Client implements KV against the daemon's Unix socket.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Ping reports whether the daemon accepts connections.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("unix", c.socketPath, 200*time.Millisecond)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (c *Client) Get(key string) ([]byte, error) {
	resp, err := c.roundTrip(Request{Op: OpGet, Key: key})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), resp.Value...), nil
}

func (c *Client) Put(key string, value []byte, ttl time.Duration) error {
	_, err := c.roundTrip(Request{Op: OpPut, Key: key, Value: value, TTLSeconds: ttlToSeconds(ttl)})
	return err
}

func (c *Client) Delete(key string) error {
	_, err := c.roundTrip(Request{Op: OpDelete, Key: key})
	return err
}

func (c *Client) roundTrip(req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	if !resp.OK {
		return resp, remoteError(resp.Error)
	}
	return resp, nil
}

// remoteError restores the sentinel errors lost in transit.
func remoteError(msg string) error {
	switch msg {
	case ErrNotFound.Error():
		return ErrNotFound
	case ErrExpired.Error():
		return ErrExpired
	default:
		return errors.New(msg)
	}
}

func ttlToSeconds(ttl time.Duration) int64 { return int64(ttl / time.Second) }

func secondsToTTL(s int64) time.Duration { return time.Duration(s) * time.Second }

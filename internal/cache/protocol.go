package cache

// Wire protocol between the feed-page daemon and its clients: one JSON
// Request followed by one JSON Response per connection.

const (
	OpGet    = "get"
	OpPut    = "put"
	OpDelete = "delete"
)

type Request struct {
	Op         string `json:"op"`
	Key        string `json:"key"`
	Value      []byte `json:"value,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type Response struct {
	OK    bool   `json:"ok"`
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handle executes req against kv and builds the reply.
func Handle(kv KV, req Request) Response {
	switch req.Op {
	case OpGet:
		v, err := kv.Get(req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Value: v}
	case OpPut:
		if err := kv.Put(req.Key, req.Value, secondsToTTL(req.TTLSeconds)); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	case OpDelete:
		if err := kv.Delete(req.Key); err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true}
	default:
		return Response{Error: "unknown op " + req.Op}
	}
}

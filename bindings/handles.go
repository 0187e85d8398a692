package main

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/nickyhof/SnapDB"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/db"
	"github.com/nickyhof/SnapDB/ps"
)

var bindingIdentity = core.Identity{
	Name:  "SnapDB Binding",
	Email: "binding@snapdb.local",
}

// Handle represents an open database instance
type Handle struct {
	mu       sync.Mutex
	instance *SnapDB.Instance
	engine   *db.Engine
}

// registry maps the integer handles given to C callers to open instances.
type registry struct {
	mu      sync.Mutex
	handles map[int]*Handle
	next    int
}

var handles = &registry{handles: make(map[int]*Handle), next: 1}

func (r *registry) open(persistence *ps.Persistence) int {
	instance := SnapDB.Open(persistence)

	r.mu.Lock()
	defer r.mu.Unlock()
	handle := r.next
	r.next++
	r.handles[handle] = &Handle{
		instance: instance,
		engine:   instance.Engine(bindingIdentity),
	}
	return handle
}

func (r *registry) get(handle int) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[handle]
	return h, ok
}

// close saves and forgets the handle. Unknown handles are ignored.
func (r *registry) close(handle int) error {
	r.mu.Lock()
	h, ok := r.handles[handle]
	delete(r.handles, handle)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.engine.Save()
	return err
}

// Response is the JSON document returned for every call.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Result  any    `json:"result,omitempty"`
}

func (h *Handle) execute(query string) Response {
	h.mu.Lock()
	defer h.mu.Unlock()

	batch := h.engine.ExecuteBatch(query)
	if len(batch) == 1 && batch.Err() != nil {
		return Response{Error: batch[0].Value().(string)}
	}
	return Response{Success: true, Result: batch.Value()}
}

func (h *Handle) tables() Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Response{Success: true, Result: h.engine.Tables()}
}

func executeJSON(handle int, query string) []byte {
	h, ok := handles.get(handle)
	if !ok {
		return encodeResponse(Response{Error: "Error: invalid handle"})
	}
	return encodeResponse(h.execute(query))
}

func tablesJSON(handle int) []byte {
	h, ok := handles.get(handle)
	if !ok {
		return encodeResponse(Response{Error: "Error: invalid handle"})
	}
	return encodeResponse(h.tables())
}

func encodeResponse(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(Response{Error: "Error: " + err.Error()})
	}
	return data
}

func main() {}

package replay

import (
	"sync"

	"github.com/pithecene-io/flightreplay/types"
)

// ParameterCache accumulates PARAM_VALUE reports and replays them on request.
//
// Safe for concurrent use: the streaming task observes and drains while the
// link reader raises requests.
type ParameterCache struct {
	mu      sync.Mutex
	order   []string
	values  map[string]types.ParamValue
	pending []types.ParamValue
}

// NewParameterCache creates an empty cache.
func NewParameterCache() *ParameterCache {
	return &ParameterCache{values: make(map[string]types.ParamValue)}
}

// Observe stores m if it is a parameter report. The latest value per id wins;
// ids keep the position they were first seen at.
func (c *ParameterCache) Observe(m *types.Message) bool {
	if m.Type != types.MsgParamValue {
		return false
	}
	pv, err := types.ParamValueFrom(m)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.values[pv.ID]; !seen {
		c.order = append(c.order, pv.ID)
	}
	c.values[pv.ID] = pv
	return true
}

// RequestList queues every cached parameter for replay in first-seen order.
// A new request replaces whatever is still pending. Returns the queue length.
func (c *ParameterCache) RequestList() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := make([]types.ParamValue, 0, len(c.order))
	for _, id := range c.order {
		pending = append(pending, c.values[id])
	}
	c.pending = pending
	return len(pending)
}

// DrainOne pops the next pending parameter.
func (c *ParameterCache) DrainOne() (types.ParamValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return types.ParamValue{}, false
	}
	pv := c.pending[0]
	c.pending = c.pending[1:]
	return pv, true
}

// Len returns the number of cached parameters.
func (c *ParameterCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Pending returns the number of parameters awaiting replay.
func (c *ParameterCache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Values returns the cached parameters in first-seen order.
func (c *ParameterCache) Values() []types.ParamValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.ParamValue, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.values[id])
	}
	return out
}

// Package stats counts invite role events and sends them to InfluxDB.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/starshine-sys/inviteroles/common/log"
)

// Client counts events. A nil *Client is valid and discards everything.
type Client struct {
	write  api.WriteAPI
	client influxdb2.Client

	mu     sync.Mutex
	m      map[string]uint32
	totals map[string]uint64

	started time.Time
}

// New creates a client that only keeps totals in memory.
func New() *Client {
	return &Client{
		m:       make(map[string]uint32),
		totals:  make(map[string]uint64),
		started: time.Now(),
	}
}

// NewInflux creates a client that also submits events to InfluxDB every minute, until ctx is cancelled.
func NewInflux(ctx context.Context, url, token, organization, database string) *Client {
	c := New()

	c.client = influxdb2.NewClientWithOptions(url, token, influxdb2.DefaultOptions().SetBatchSize(20))
	c.write = c.client.WriteAPI(organization, database)

	go c.submit(ctx)

	return c
}

// RegisterEvent increments the counter for the named event.
func (c *Client) RegisterEvent(name string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.m[name]++
	c.totals[name]++
	c.mu.Unlock()
}

// Totals returns the number of times each event was registered since the client was created.
func (c *Client) Totals() map[string]uint64 {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]uint64, len(c.totals))
	for k, v := range c.totals {
		out[k] = v
	}
	return out
}

// Uptime returns how long the client has been running.
func (c *Client) Uptime() time.Duration {
	if c == nil {
		return 0
	}
	return time.Since(c.started)
}

// flush returns the events registered since the last flush, and resets them.
func (c *Client) flush() (events map[string]interface{}, total uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events = make(map[string]interface{}, len(c.m))
	for k, v := range c.m {
		total += v
		events[k] = v
		c.m[k] = 0
	}
	return events, total
}

func (c *Client) submit(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			go c.submitInner()
		case <-ctx.Done():
			c.write.Flush()
			c.client.Close()
			return
		}
	}
}

func (c *Client) submitInner() {
	log.Debug("Submitting metrics to InfluxDB")

	events, total := c.flush()
	if len(events) > 0 {
		c.write.WritePoint(influxdb2.NewPoint("events", nil, events, time.Now()))
	}

	stats := runtime.MemStats{}
	runtime.ReadMemStats(&stats)

	data := map[string]interface{}{
		"events":      total,
		"alloc":       stats.Alloc,
		"sys":         stats.Sys,
		"total_alloc": stats.TotalAlloc,
		"goroutines":  runtime.NumGoroutine(),
	}

	sysMem, err := mem.VirtualMemory()
	if err != nil {
		log.Errorf("getting system memory: %v", err)
	} else {
		data["total_sys"] = sysMem.Used
		data["total_sys_percent"] = sysMem.UsedPercent
	}

	cpuData, err := cpu.Percent(time.Second, true)
	if err != nil {
		log.Errorf("getting cpu info: %v", err)
	} else {
		for i, d := range cpuData {
			data[fmt.Sprintf("cpu_%d", i)] = d
		}
	}

	c.write.WritePoint(influxdb2.NewPoint("statistics", nil, data, time.Now()))
}

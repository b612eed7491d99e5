package health

import (
	"context"
	"sync"
	"time"

	"github.com/infinitescroll/image-store/internal/database"
	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/storage"
)

const checkInterval = 10 * time.Second
const checkTimeout = 8 * time.Second

// External image id that is never stored; looking it up exercises the database without returning a record
const probeImageID = "healthcheck"

// Checker is a periodic health checker
type Checker struct {
	Ctx      context.Context
	Storage  storage.Provider
	Database database.Provider
	status   Status
	mutex    sync.RWMutex
	Log      *logger.Logger
}

// Status contains the healtcheck status
type Status struct {
	Healthy  bool   `json:"healthy"`
	Database string `json:"database,omitempty"`
	Storage  string `json:"storage,omitempty"`
}

// Run starts the health checker
func (c *Checker) Run() {
	ticker := time.NewTicker(checkInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				c.runCheck()
			case <-c.Ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()

	c.runCheck()
}

// Status returns the status of the health checks
func (c *Checker) Status() Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.status
}

func (c *Checker) runCheck() {
	ctx, cancel := context.WithTimeout(c.Ctx, checkTimeout)
	defer cancel()

	channel := make(chan Status, 1)
	go func() {
		c.check(ctx, channel)
	}()

	select {
	case <-ctx.Done():
		c.mutex.Lock()
		c.status = c.unknownStatus(false)
		c.mutex.Unlock()
		c.Log.Errorw("healthcheck timed out")
	case status, ok := <-channel:
		if !ok {
			return
		}

		c.mutex.Lock()
		c.status = status
		c.mutex.Unlock()
		if !status.Healthy {
			c.Log.Errorw("healthcheck error",
				"status", status,
			)
		}
	}
}

func (c *Checker) unknownStatus(healthy bool) Status {
	status := Status{
		Healthy: healthy,
	}
	if c.Database != nil {
		status.Database = "unknown"
	}
	if c.Storage != nil {
		status.Storage = "unknown"
	}

	return status
}

func (c *Checker) check(ctx context.Context, channel chan Status) {
	defer close(channel)

	if ctx.Err() != nil {
		return
	}

	status := c.unknownStatus(true)

	if c.Database != nil {
		if _, err := c.Database.Exists(ctx, probeImageID); err != nil {
			status.Healthy = false
			status.Database = "unhealthy"
		} else {
			status.Database = "healthy"
		}
	}

	if ctx.Err() != nil {
		return
	}

	if c.Storage != nil {
		if err := c.Storage.Ping(ctx); err != nil {
			status.Healthy = false
			status.Storage = "unhealthy"
		} else {
			status.Storage = "healthy"
		}
	}

	channel <- status
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Http timeouts
// There's no server write timeout, as uploads run until the import is done; reads are bounded by HandlerTimeout
const (
	ReadTimeout    = 5 * time.Second
	HandlerTimeout = 45 * time.Second
)

// ShutdownTimeout bounds how long backends get to release their connections
const ShutdownTimeout = 10 * time.Second

// WaitForInterrupt waits for SIGINT/SIGTERM or for the context to be canceled
func WaitForInterrupt(ctx context.Context) error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		return fmt.Errorf("received signal %s", sig)
	case <-ctx.Done():
		return errors.New("canceled")
	}
}

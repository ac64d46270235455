package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running command on SIGINT/SIGTERM and
// explains what was lost.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	sigChan     chan os.Signal
	hint        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{
		writer: writer,
	}
}

// HandleInterrupts returns a context that is canceled on interrupt. The hint,
// when not empty, is printed under the interrupt notice.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, hint string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel
	h.hint = hint

	h.sigChan = make(chan os.Signal, 1)
	signal.Notify(h.sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case _, ok := <-h.sigChan:
			if ok {
				h.interrupt()
			}
		case <-ctx.Done():
		}
	}()

	return ctx
}

// Stop releases the signal subscription.
func (h *InterruptHandler) Stop() {
	if h.sigChan != nil {
		signal.Stop(h.sigChan)
	}
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

// interrupt records the interrupt, prints the notice once and cancels.
func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	if !h.interrupted {
		h.interrupted = true
		h.showInterruptMessage()
	}
	h.mu.Unlock()
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

// showInterruptMessage displays the interrupt notice.
func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning("Interrupted!")
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

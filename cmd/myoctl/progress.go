package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter displays a single-line progress message with elapsed time
// while the armband is being dialed. It stays silent when stderr is not a
// terminal so piped output is not polluted.
//
// A ProgressPrinter is single-use: Start at most once, then Stop exactly
// once. Stop is safe to call multiple times and from multiple goroutines.
type ProgressPrinter struct {
	prefix    string
	enabled   bool
	startTime time.Time
	ticker    atomic.Pointer[time.Ticker]
	stopChan  chan struct{}
	done      chan struct{} // closed when goroutine exits
}

// NewProgressPrinter creates a progress printer with the given message prefix.
func NewProgressPrinter(prefix string) *ProgressPrinter {
	return &ProgressPrinter{
		prefix:  prefix,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressPrinter) Start() {
	if !p.enabled {
		return
	}

	p.done = make(chan struct{})
	p.stopChan = make(chan struct{})
	p.startTime = time.Now()
	ticker := time.NewTicker(progressUpdateInterval)
	p.ticker.Store(ticker)

	fmt.Fprintf(os.Stderr, "\r%s...   ", p.prefix)

	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				seconds := int(time.Since(p.startTime).Seconds())
				if seconds > 0 {
					fmt.Fprintf(os.Stderr, "\r%s... %ds   ", p.prefix, seconds)
				}
			}
		}
	}()
}

// Stop stops the progress display and clears the line. Only the first call
// stops the ticker and waits for the goroutine to exit.
func (p *ProgressPrinter) Stop() {
	ticker := p.ticker.Swap(nil)
	if ticker == nil {
		return // Already stopped or never started
	}

	ticker.Stop()
	close(p.stopChan)
	<-p.done

	fmt.Fprint(os.Stderr, clearLineSequence)
}

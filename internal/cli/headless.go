package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/player"
	"github.com/tessro/crate/internal/tail"
)

// runHeadless plays the catalog from start and prints playback events until
// the queue ends or the process is interrupted.
func runHeadless(ctx context.Context, engine *player.Engine, catalog *core.Catalog, start int) error {
	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji && !cfg.Tail.NoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	// Handle Ctrl+C gracefully
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := engine.BuildQueue(catalog, start); err != nil {
		return err
	}
	engine.Play()

	watcher := tail.NewWatcher(engine, time.Duration(cfg.Tail.Interval)*time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	// Print events as they arrive
	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			fmt.Println(formatter.Format(event))
			if event.Type == tail.EventQueueEnd {
				watcher.Stop()
				return nil
			}

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

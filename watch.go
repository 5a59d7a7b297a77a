package main

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchFile compiles input into output once, then again every time input
// changes, until ctx is done. Compile errors are logged and do not stop
// the watch.
func watchFile(ctx context.Context, input, output string, opts compileOptions, logger *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace files instead of writing them, so watch the
	// directory and filter by name.
	input = filepath.Clean(input)
	if err := w.Add(filepath.Dir(input)); err != nil {
		return err
	}

	rebuild := func() {
		if err := compileFile(ctx, input, output, opts); err != nil {
			logger.Printf("%s: %v", input, err)
			return
		}
		logger.Printf("wrote %s", output)
	}
	rebuild()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != input {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				rebuild()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch: %v", err)
		}
	}
}

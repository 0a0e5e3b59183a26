package asset

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/inamate/pleat/internal/typeid"
)

// Watch reports PNG files that other processes drop into the frame
// directory through the upload callback, so an external capture tool can
// feed stills without going through HTTP. It returns once the watch is set
// up and stops when ctx is done.
func (h *Handler) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", h.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
					h.dropped(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("frame watcher", "error", err)
			}
		}
	}()
	return nil
}

func (h *Handler) dropped(path string) {
	if h.onUpload == nil || !strings.EqualFold(filepath.Ext(path), ".png") {
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	// Uploads are saved under their frame id and already reported.
	if typeid.Validate(name, typeid.PrefixFrame) == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		// Renamed away or removed before we got to it.
		return
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		// Likely still being written; the next write event retries.
		slog.Debug("skip dropped frame", "path", path, "error", err)
		return
	}
	h.onUpload(name, fit(img, maxFrameSide))
	slog.Info("frame picked up", "path", path)
}

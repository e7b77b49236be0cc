package prefabs

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind says which kind of file a watcher event concerns.
type ChangeKind int

const (
	ChangeSpec ChangeKind = iota + 1
	ChangeScript
	ChangeLevel
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSpec:
		return "spec"
	case ChangeScript:
		return "script"
	case ChangeLevel:
		return "level"
	default:
		return "unknown"
	}
}

// ClassifyFile reports the kind of a watched file by extension.
func ClassifyFile(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ChangeSpec, true
	case scriptExt:
		return ChangeScript, true
	case ".json":
		return ChangeLevel, true
	default:
		return 0, false
	}
}

type Change struct {
	Path string
	Kind ChangeKind
}

// DefaultDebounce is how long a file must stay quiet before its change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changed spec, script and level files. A burst of writes to
// one file is delivered as a single Change once the file has been quiet for
// Debounce. Events and Errors are closed by Close.
type Watcher struct {
	Events chan Change
	Errors chan error

	fsw      *fsnotify.Watcher
	log      *slog.Logger
	debounce time.Duration
	quit     chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewWatcher(logger *slog.Logger, dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		Events:   make(chan Change, 16),
		Errors:   make(chan error, 1),
		fsw:      fsw,
		log:      logger.With("component", "prefabs.watcher"),
		debounce: DefaultDebounce,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine. Safe to call more
// than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.quit)
		err = w.fsw.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var (
		pending = map[string]ChangeKind{}
		order   []string
		timer   = time.NewTimer(w.debounce)
		fire    <-chan time.Time
	)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.quit:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			kind, ok := ClassifyFile(event.Name)
			if !ok {
				continue
			}
			if _, seen := pending[event.Name]; !seen {
				order = append(order, event.Name)
			}
			pending[event.Name] = kind
			timer.Reset(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			for _, name := range order {
				change := Change{Path: name, Kind: pending[name]}
				w.log.Debug("file changed", "path", change.Path, "kind", change.Kind.String())
				select {
				case w.Events <- change:
				case <-w.quit:
					return
				}
			}
			clear(pending)
			order = order[:0]

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				w.log.Warn("watcher error dropped", "err", err)
			}
		}
	}
}

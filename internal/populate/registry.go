package populate

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"decoyforge/internal/logging"
)

//go:embed profiles/*.yaml
var builtinProfiles embed.FS

// Registry holds the known profiles. Built-ins ship embedded; a profile
// directory overlays or replaces them, optionally hot-reloaded on change.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile

	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewRegistry loads the embedded built-in profiles.
func NewRegistry() (*Registry, error) {
	r := &Registry{profiles: make(map[string]*Profile)}
	if err := r.loadFS(builtinProfiles, "profiles"); err != nil {
		return nil, fmt.Errorf("failed to load builtin profiles: %w", err)
	}
	return r, nil
}

// LoadDir overlays profile definitions from dir. Files there shadow
// built-ins of the same name.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read profile directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		if err := r.loadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	r.dir = dir
	return nil
}

// Watch reloads dir's profiles when files change. Call Stop to shut the
// watcher down.
func (r *Registry) Watch(dir string) error {
	if err := r.LoadDir(dir); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create profile watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch profile directory: %w", err)
	}
	r.watcher = watcher
	r.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isYAML(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := r.loadFile(event.Name); err != nil {
						logging.Populate("profile reload failed for %s: %v", event.Name, err)
					} else {
						logging.Populate("profile reloaded: %s", event.Name)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Populate("profile watcher error: %v", err)
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

// Stop shuts down the profile watcher, if running.
func (r *Registry) Stop() {
	if r.watcher != nil {
		close(r.done)
		r.watcher.Close()
		r.watcher = nil
	}
}

// Get returns a profile by name.
func (r *Registry) Get(name string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (have: %s)", name, strings.Join(r.namesLocked(), ", "))
	}
	return p, nil
}

// Names lists the known profile names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) loadFS(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := fs.ReadFile(fsys, root+"/"+e.Name())
		if err != nil {
			return err
		}
		if err := r.add(data, e.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	return r.add(data, path)
}

func (r *Registry) add(data []byte, source string) error {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse profile %s: %w", source, err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid profile %s: %w", source, err)
	}
	r.mu.Lock()
	r.profiles[p.Name] = &p
	r.mu.Unlock()
	return nil
}

func isYAML(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/drakos74/representer/internal/storage"
)

const (
	filename = "%d.events.log"
)

// Logger appends json encoded values to line based log files.
type Logger struct {
	root  string
	path  string
	mutex *sync.Mutex
}

func NewLogger(root, folder string) *Logger {
	return &Logger{
		root:  root,
		path:  folder,
		mutex: new(sync.Mutex),
	}
}

func (l *Logger) filePath(k storage.K) string {
	return path.Join(l.root, storage.RegistryDir, l.path, k.Name, k.Label)
}

func (l *Logger) Store(k storage.Key, value interface{}) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	filePath := l.filePath(storage.K{
		Name:  k.Name,
		Label: k.Label,
	})

	// check if filepath exists
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(path.Join(filePath, fmt.Sprintf(filename, k.Hash)), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	defer f.Close()

	if _, err = f.Write(append(b, []byte("\n")...)); err != nil {
		return fmt.Errorf("could not write log file for  '%+v': %w", k, err)
	}
	return nil
}

// Registry is a file based event log.
// Every registry instance writes into its own hash file, GetAll reads all of them.
type Registry struct {
	hash   int64
	logger *Logger
}

func NewEventRegistry(root, path string) *Registry {
	return &Registry{
		hash:   time.Now().UnixNano(),
		logger: NewLogger(root, path),
	}
}

// EventRegistry creates a new registry generator
func EventRegistry(root string) storage.EventRegistry {
	return func(p string) (storage.Registry, error) {
		return NewEventRegistry(root, p), nil
	}
}

func (e *Registry) WithHash(h int64) *Registry {
	e.hash = h
	return e
}

func (e *Registry) Add(key storage.K, value interface{}) error {
	k := storage.Key{
		Hash:  e.hash,
		Name:  key.Name,
		Label: key.Label,
	}
	return e.logger.Store(k, value)
}

// GetAll appends all logged values for the key to the slice pointed to by values.
func (e *Registry) GetAll(key storage.K, values interface{}) error {

	ptr := reflect.ValueOf(values)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting pointers to slices as placeholder for the results")
	}
	slice := ptr.Elem()
	t := slice.Type().Elem()

	filePath := e.logger.filePath(key)
	files, err := filepath.Glob(path.Join(filePath, "*.events.log"))
	if err != nil {
		return fmt.Errorf("could not list events: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("could not open '%s': %w", file, err)
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			instance := reflect.New(t)
			if err := json.Unmarshal(line, instance.Interface()); err != nil {
				f.Close()
				return fmt.Errorf("could not decode event '%s': %w", string(line), err)
			}
			slice = reflect.Append(slice, instance.Elem())
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("could not read '%s': %w", file, err)
		}
	}

	ptr.Elem().Set(slice)
	return nil
}

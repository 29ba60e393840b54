package envutil

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu        sync.Mutex
	malformed = map[string]string{}
)

func lookup(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// reject records a value that could not be parsed; the caller falls back to its default.
func reject(name, raw string) {
	mu.Lock()
	malformed[name] = raw
	mu.Unlock()
}

// Malformed lists variables whose values were ignored, sorted by name.
func Malformed() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(malformed))
	for name := range malformed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func String(name, def string) string {
	if v := lookup(name); v != "" {
		return v
	}
	return def
}

// List splits a comma-separated value and drops blank entries.
func List(name string) []string {
	var out []string
	for _, part := range strings.Split(lookup(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func Int(name string, def int) int {
	v := lookup(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		reject(name, v)
		return def
	}
	return i
}

func Bool(name string, def bool) bool {
	v := strings.ToLower(lookup(name))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	reject(name, v)
	return def
}

// Duration accepts "90s" style values or a bare number of seconds.
func Duration(name string, def time.Duration) time.Duration {
	v := lookup(name)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	reject(name, v)
	return def
}

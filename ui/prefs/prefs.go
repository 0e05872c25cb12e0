// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"magic-eraser/internal/brush"
)

const (
	appDir    = "magic-eraser"
	prefsFile = "preferences.json"
)

// Preference keys.
const (
	KeyLastDir      = "lastDirectory"
	KeyIOPaintURL   = "iopaintURL"
	KeyBrushSize    = "brushSize"
	KeyBrushOpacity = "brushOpacity"
	KeyBrushColor   = "brushColor"
	KeyBlurAmount   = "blurIntensity"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]any
	path   string
	dirty  bool
}

// Load reads preferences from ~/.config/magic-eraser/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, appDir, prefsFile))
}

// LoadFrom reads preferences from path. A missing or malformed file yields
// empty preferences that will be written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]any),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.dirty = false
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// SaveIfChanged saves only when a value was set since the last save.
func (p *Prefs) SaveIfChanged() error {
	p.mu.RLock()
	dirty := p.dirty
	p.mu.RUnlock()
	if !dirty {
		return nil
	}
	return p.Save()
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.values[key].(string); ok {
		return s
	}
	return ""
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

func (p *Prefs) set(key string, val any) {
	p.mu.Lock()
	p.values[key] = val
	p.dirty = true
	p.mu.Unlock()
}

// Brush returns the saved brush settings, starting from the defaults.
func (p *Prefs) Brush() brush.Settings {
	bs := brush.DefaultSettings()
	bs.Size = int(p.FloatWithFallback(KeyBrushSize, float64(bs.Size)))
	bs.Opacity = p.FloatWithFallback(KeyBrushOpacity, bs.Opacity)
	if c := p.String(KeyBrushColor); c != "" {
		bs.Color = c
	}
	return bs.Normalize()
}

// SetBrush stores the brush size, opacity and color.
func (p *Prefs) SetBrush(bs brush.Settings) {
	p.SetFloat(KeyBrushSize, float64(bs.Size))
	p.SetFloat(KeyBrushOpacity, bs.Opacity)
	p.SetString(KeyBrushColor, bs.Color)
}

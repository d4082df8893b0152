package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/netsession/internal/shared/id"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

// SaveContext collects the files hooks contribute to the session being saved
type SaveContext struct {
	mu    sync.Mutex
	files map[string][]types.AppFile // Protected by mu
}

func newSaveContext() *SaveContext {
	return &SaveContext{files: make(map[string][]types.AppFile)}
}

// AddAppFiles attaches files to the archive under the app's folder
func (sc *SaveContext) AddAppFiles(app string, files ...types.AppFile) error {
	if err := utils.ValidateAppName(app); err != nil {
		return err
	}
	clean := make([]types.AppFile, 0, len(files))
	for _, f := range files {
		if f.Path == "" {
			return fmt.Errorf("app %s: file %q has no path", app, f.Name)
		}
		name, err := utils.CleanRelPath(f.Name)
		if err != nil {
			return fmt.Errorf("app %s: %w", app, err)
		}
		clean = append(clean, types.AppFile{Name: name, Path: f.Path})
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.files[app] = append(sc.files[app], clean...)
	return nil
}

// Files returns the collected files
func (sc *SaveContext) Files() map[string][]types.AppFile {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	out := make(map[string][]types.AppFile, len(sc.files))
	for app, files := range sc.files {
		out[app] = append([]types.AppFile(nil), files...)
	}
	return out
}

// Hook is called synchronously before every capture
type Hook interface {
	BeforeSave(ctx context.Context, sc *SaveContext) error
}

// HookFunc adapts a function to Hook
type HookFunc func(ctx context.Context, sc *SaveContext) error

// BeforeSave calls f
func (f HookFunc) BeforeSave(ctx context.Context, sc *SaveContext) error {
	return f(ctx, sc)
}

// EventType identifies a lifecycle notification
type EventType string

const (
	EventLoaded EventType = "session.loaded"
	EventSaved  EventType = "session.saved"
)

// Event is delivered to listeners after the manager's state changed
type Event struct {
	Type      EventType             `json:"type"`
	SessionID id.SessionID          `json:"session_id"`
	FileName  string                `json:"file_name,omitempty"`
	Time      time.Time             `json:"time"`
	Metadata  types.SessionMetadata `json:"metadata"`
}

// Listener receives lifecycle events. Listeners run on the caller's
// goroutine and must not call back into the manager.
type Listener func(Event)

// Package teabind bridges store updates into a Bubble Tea program's message
// loop. The adapter stays thin: it forwards snapshots as messages and leaves
// all rendering decisions to the program's model.
package teabind

import tea "github.com/charmbracelet/bubbletea"

// Sender is the slice of *tea.Program the bindings need.
type Sender interface {
	Send(msg tea.Msg)
}

// StateMsg carries a full state snapshot into the program loop.
type StateMsg struct {
	Store string
	State any
}

// PathMsg carries the value at one watched path.
type PathMsg struct {
	Store string
	Path  string
	Value any
}

// Subscribable is the store surface the full-state binding consumes.
type Subscribable[T any] interface {
	Name() string
	Subscribe(fn func(T)) (cancel func())
}

// Watchable is the store surface the path binding consumes.
type Watchable interface {
	Name() string
	WatchPath(path string, fn func(any)) (cancel func())
}

// Bind forwards every committed update of the store to the program as a
// StateMsg. The returned cancel detaches the binding.
func Bind[T any](store Subscribable[T], p Sender) (cancel func()) {
	name := store.Name()
	return store.Subscribe(func(state T) {
		p.Send(StateMsg{Store: name, State: state})
	})
}

// BindPath forwards changes at one path to the program as PathMsgs. Sibling
// changes do not produce messages.
func BindPath(store Watchable, path string, p Sender) (cancel func()) {
	name := store.Name()
	return store.WatchPath(path, func(v any) {
		p.Send(PathMsg{Store: name, Path: path, Value: v})
	})
}

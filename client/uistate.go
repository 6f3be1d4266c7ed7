package client

import (
	"sync"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// UIState is the ephemeral view state: nothing here is persisted or sent to
// the server except the filters, which drive what the cache fetches.
type UIState struct {
	Theme            Theme
	SidebarOpen      bool
	TaskFormOpen     bool
	CategoryFormOpen bool
	Filters          models.TaskFilters
	SelectedTaskID   *uuid.UUID
	Err              string
}

// StateStore holds the UI state behind reducer-style setters. It is meant to
// be constructed once per application and passed to view components, not
// reached through a package-level singleton.
type StateStore struct {
	mu    sync.Mutex
	state UIState
}

func NewStateStore() *StateStore {
	return &StateStore{state: UIState{Theme: ThemeSystem}}
}

// State returns a snapshot of the current state.
func (s *StateStore) State() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *StateStore) SetTheme(theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
}

func (s *StateStore) ToggleSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SidebarOpen = !s.state.SidebarOpen
}

func (s *StateStore) SetSidebarOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SidebarOpen = open
}

func (s *StateStore) SetTaskFormOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TaskFormOpen = open
}

func (s *StateStore) SetCategoryFormOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CategoryFormOpen = open
}

// SetFilters shallow-merges: fields present in the patch overwrite, absent
// fields keep their value.
func (s *StateStore) SetFilters(patch models.TaskFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filters = s.state.Filters.Merge(patch)
}

// ClearFilters resets to the empty filter set.
func (s *StateStore) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filters = models.TaskFilters{}
}

func (s *StateStore) SetSelectedTask(id *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedTaskID = id
}

func (s *StateStore) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = msg
}

func (s *StateStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = ""
}

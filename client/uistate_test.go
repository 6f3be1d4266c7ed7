package client

import (
	"testing"

	"github.com/google/uuid"

	"taskdeck/internal/models"
)

func TestStateStoreDefaults(t *testing.T) {
	s := NewStateStore()
	state := s.State()
	if state.Theme != ThemeSystem {
		t.Errorf("Theme = %q, want system", state.Theme)
	}
	if state.SidebarOpen || state.TaskFormOpen || state.CategoryFormOpen {
		t.Errorf("panels open by default: %+v", state)
	}
}

func TestStateStoreToggles(t *testing.T) {
	s := NewStateStore()

	s.ToggleSidebar()
	if !s.State().SidebarOpen {
		t.Error("sidebar not opened")
	}
	s.ToggleSidebar()
	if s.State().SidebarOpen {
		t.Error("sidebar not closed")
	}

	s.SetTheme(ThemeDark)
	if s.State().Theme != ThemeDark {
		t.Errorf("Theme = %q", s.State().Theme)
	}

	s.SetTaskFormOpen(true)
	s.SetCategoryFormOpen(true)
	state := s.State()
	if !state.TaskFormOpen || !state.CategoryFormOpen {
		t.Errorf("forms not opened: %+v", state)
	}
}

func TestStateStoreFilterMerge(t *testing.T) {
	s := NewStateStore()
	completed := true
	s.SetFilters(models.TaskFilters{Completed: &completed})

	// merging a different field keeps the earlier one
	high := models.PriorityHigh
	s.SetFilters(models.TaskFilters{Priority: &high})

	f := s.State().Filters
	if f.Completed == nil || !*f.Completed {
		t.Errorf("completed filter lost on merge: %+v", f)
	}
	if f.Priority == nil || *f.Priority != models.PriorityHigh {
		t.Errorf("priority not applied: %+v", f)
	}

	// merging the same field overwrites it
	low := models.PriorityLow
	s.SetFilters(models.TaskFilters{Priority: &low})
	if *s.State().Filters.Priority != models.PriorityLow {
		t.Errorf("priority not overwritten: %+v", s.State().Filters)
	}

	s.ClearFilters()
	f = s.State().Filters
	if f.Completed != nil || f.Priority != nil || f.Page != 0 {
		t.Errorf("filters survived ClearFilters: %+v", f)
	}
}

func TestStateStoreSelectionAndError(t *testing.T) {
	s := NewStateStore()

	id := uuid.New()
	s.SetSelectedTask(&id)
	if got := s.State().SelectedTaskID; got == nil || *got != id {
		t.Errorf("SelectedTaskID = %v", got)
	}
	s.SetSelectedTask(nil)
	if s.State().SelectedTaskID != nil {
		t.Error("selection not cleared")
	}

	s.SetError("something broke")
	if s.State().Err != "something broke" {
		t.Errorf("Err = %q", s.State().Err)
	}
	s.ClearError()
	if s.State().Err != "" {
		t.Error("error not cleared")
	}
}

package validate

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestCreateTaskValid(t *testing.T) {
	body := `{"title":"Buy milk","priority":"low","description":"2%","dueDate":"2025-06-01T12:00:00Z","categoryId":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`
	draft, err := CreateTask(strings.NewReader(body))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if draft.Title != "Buy milk" || draft.Priority != models.PriorityLow {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if draft.DueDate == nil || !draft.DueDate.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("dueDate not parsed: %+v", draft.DueDate)
	}
	if draft.CategoryID == nil {
		t.Errorf("categoryId not parsed")
	}
}

func TestCreateTaskBlankOptionalsAreAbsent(t *testing.T) {
	// blank must normalize to absent before the format checks run
	body := `{"title":"x","priority":"high","dueDate":"","categoryId":""}`
	draft, err := CreateTask(strings.NewReader(body))
	if err != nil {
		t.Fatalf("blank optionals must not be rejected: %v", err)
	}
	if draft.DueDate != nil || draft.CategoryID != nil {
		t.Errorf("blank optionals must be absent: %+v", draft)
	}
}

func TestCreateTaskCollectsAllViolations(t *testing.T) {
	body := `{"title":"","priority":"urgent","dueDate":"tomorrow","categoryId":"nope"}`
	_, err := CreateTask(strings.NewReader(body))
	fields := fieldErrors(t, err)

	for _, want := range []string{"title", "priority", "dueDate", "categoryId"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("missing violation for %q in %v", want, fields)
		}
	}
	if fields["title"] != "Title is required" {
		t.Errorf("title message = %q", fields["title"])
	}
}

func TestCreateTaskTitleTooLong(t *testing.T) {
	body := `{"title":"` + strings.Repeat("a", 256) + `","priority":"low"}`
	_, err := CreateTask(strings.NewReader(body))
	fields := fieldErrors(t, err)
	if fields["title"] != "Title is too long" {
		t.Errorf("title message = %q", fields["title"])
	}
}

func TestCreateTaskBadJSON(t *testing.T) {
	_, err := CreateTask(strings.NewReader("{"))
	fieldErrors(t, err)
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	patch, err := UpdateTask(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !patch.IsZero() {
		t.Errorf("empty body must yield zero patch: %+v", patch)
	}
}

func TestUpdateTaskSparseFields(t *testing.T) {
	patch, err := UpdateTask(strings.NewReader(`{"completed":true,"priority":"medium"}`))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if patch.Completed == nil || !*patch.Completed {
		t.Errorf("completed not set")
	}
	if patch.Priority == nil || *patch.Priority != models.PriorityMedium {
		t.Errorf("priority not set")
	}
	if patch.Title != nil || patch.Description != nil || patch.DueDate != nil {
		t.Errorf("absent fields must stay nil: %+v", patch)
	}
}

func TestUpdateTaskEmptyTitleRejected(t *testing.T) {
	_, err := UpdateTask(strings.NewReader(`{"title":""}`))
	fields := fieldErrors(t, err)
	if fields["title"] != "Title is required" {
		t.Errorf("title message = %q", fields["title"])
	}
}

func TestCreateCategory(t *testing.T) {
	draft, err := CreateCategory(strings.NewReader(`{"name":"Errands","color":"#AaBb09"}`))
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if draft.Name != "Errands" || draft.Color != "#AaBb09" {
		t.Errorf("unexpected draft: %+v", draft)
	}
}

func TestCreateCategoryInvalidColor(t *testing.T) {
	for _, color := range []string{"#fff", "red", "#12345G", "123456#"} {
		_, err := CreateCategory(strings.NewReader(`{"name":"x","color":"` + color + `"}`))
		fields := fieldErrors(t, err)
		if fields["color"] != "Invalid color format" {
			t.Errorf("color %q: message = %q", color, fields["color"])
		}
	}
}

func TestCreateCategoryNameRules(t *testing.T) {
	_, err := CreateCategory(strings.NewReader(`{"name":"","color":"#112233"}`))
	fields := fieldErrors(t, err)
	if fields["name"] != "Name is required" {
		t.Errorf("name message = %q", fields["name"])
	}

	_, err = CreateCategory(strings.NewReader(`{"name":"` + strings.Repeat("n", 51) + `","color":"#112233"}`))
	fields = fieldErrors(t, err)
	if fields["name"] != "Name is too long" {
		t.Errorf("name message = %q", fields["name"])
	}
}

func TestTaskFilterQueryDefaults(t *testing.T) {
	f, err := TaskFilterQuery(url.Values{})
	if err != nil {
		t.Fatalf("TaskFilterQuery: %v", err)
	}
	if f.Page != 1 || f.Limit != 20 {
		t.Errorf("defaults: page=%d limit=%d", f.Page, f.Limit)
	}
	if f.Completed != nil || f.Priority != nil || f.Search != nil {
		t.Errorf("no filters expected: %+v", f)
	}
}

func TestTaskFilterQueryCompletedCoercion(t *testing.T) {
	f, err := TaskFilterQuery(url.Values{"completed": {"true"}})
	if err != nil || f.Completed == nil || !*f.Completed {
		t.Fatalf("completed=true: %+v err=%v", f, err)
	}

	f, err = TaskFilterQuery(url.Values{"completed": {"false"}})
	if err != nil || f.Completed == nil || *f.Completed {
		t.Fatalf("completed=false: %+v err=%v", f, err)
	}

	_, err = TaskFilterQuery(url.Values{"completed": {"yes"}})
	fields := fieldErrors(t, err)
	if _, ok := fields["completed"]; !ok {
		t.Errorf("completed=yes must be rejected: %v", fields)
	}

	// empty means absent, not invalid
	f, err = TaskFilterQuery(url.Values{"completed": {""}})
	if err != nil || f.Completed != nil {
		t.Fatalf("completed= should be absent: %+v err=%v", f, err)
	}
}

func TestTaskFilterQueryPaging(t *testing.T) {
	f, err := TaskFilterQuery(url.Values{"page": {"0"}, "limit": {"500"}})
	if err != nil {
		t.Fatalf("TaskFilterQuery: %v", err)
	}
	if f.Page != 1 {
		t.Errorf("page floor: got %d", f.Page)
	}
	if f.Limit != 100 {
		t.Errorf("limit clamp: got %d", f.Limit)
	}

	_, err = TaskFilterQuery(url.Values{"page": {"two"}})
	fields := fieldErrors(t, err)
	if _, ok := fields["page"]; !ok {
		t.Errorf("page=two must be rejected")
	}
}

func TestTaskFilterQueryDatesAndSearch(t *testing.T) {
	f, err := TaskFilterQuery(url.Values{
		"dueDateBefore": {"2025-06-01T00:00:00Z"},
		"dueDateAfter":  {"2025-01-01T00:00:00Z"},
		"search":        {"Milk"},
	})
	if err != nil {
		t.Fatalf("TaskFilterQuery: %v", err)
	}
	if f.DueDateBefore == nil || f.DueDateAfter == nil || f.Search == nil {
		t.Fatalf("filters missing: %+v", f)
	}

	_, err = TaskFilterQuery(url.Values{"search": {strings.Repeat("s", 101)}})
	fields := fieldErrors(t, err)
	if _, ok := fields["search"]; !ok {
		t.Errorf("overlong search must be rejected")
	}

	_, err = TaskFilterQuery(url.Values{"dueDateBefore": {"06/01/2025"}})
	fields = fieldErrors(t, err)
	if _, ok := fields["dueDateBefore"]; !ok {
		t.Errorf("non-ISO date must be rejected")
	}
}

func TestTaskFilterQueryCollectsAllViolations(t *testing.T) {
	_, err := TaskFilterQuery(url.Values{
		"completed": {"maybe"},
		"priority":  {"urgent"},
		"page":      {"x"},
	})
	fields := fieldErrors(t, err)
	if len(fields) != 3 {
		t.Errorf("expected 3 violations, got %v", fields)
	}
}

func TestUUIDList(t *testing.T) {
	ids, err := UUIDList("ids", []string{"6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	if err != nil || len(ids) != 1 {
		t.Fatalf("UUIDList: %v %v", ids, err)
	}

	if _, err := UUIDList("ids", nil); err == nil {
		t.Error("empty list must be rejected")
	}
	if _, err := UUIDList("ids", []string{"nope"}); err == nil {
		t.Error("bad uuid must be rejected")
	}
}

// Package validate turns untrusted request bodies and query strings into
// normalized records. Every violated constraint is reported, not just the
// first, so clients can render per-field messages.
package validate

import (
	"encoding/json"
	"io"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskdeck/internal/apperr"
	"taskdeck/internal/models"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// report fields under their wire names
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type createTaskBody struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Priority    string  `json:"priority" validate:"required,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
	CategoryID  *string `json:"categoryId"`
}

type updateTaskBody struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
	CategoryID  *string `json:"categoryId"`
}

type createCategoryBody struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required"`
}

// CreateTask validates a create-task body and returns the normalized draft.
func CreateTask(body io.Reader) (models.TaskDraft, error) {
	var in createTaskBody
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		return models.TaskDraft{}, badJSON()
	}

	// blank optional fields mean "absent" and must be dropped before any
	// format check runs
	in.DueDate = blankToNil(in.DueDate)
	in.CategoryID = blankToNil(in.CategoryID)

	errs := structErrors(in)
	dueDate, errs := parseDate("dueDate", in.DueDate, errs)
	categoryID, errs := parseUUID("categoryId", in.CategoryID, errs)
	if len(errs) > 0 {
		return models.TaskDraft{}, &apperr.ValidationError{Fields: errs}
	}

	return models.TaskDraft{
		Title:       in.Title,
		Description: in.Description,
		Priority:    models.Priority(in.Priority),
		DueDate:     dueDate,
		CategoryID:  categoryID,
	}, nil
}

// UpdateTask validates a sparse update body. Fields absent from the JSON
// stay nil in the returned patch.
func UpdateTask(body io.Reader) (models.TaskPatch, error) {
	var in updateTaskBody
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		return models.TaskPatch{}, badJSON()
	}

	in.DueDate = blankToNil(in.DueDate)
	in.CategoryID = blankToNil(in.CategoryID)

	errs := structErrors(in)
	dueDate, errs := parseDate("dueDate", in.DueDate, errs)
	categoryID, errs := parseUUID("categoryId", in.CategoryID, errs)
	if len(errs) > 0 {
		return models.TaskPatch{}, &apperr.ValidationError{Fields: errs}
	}

	patch := models.TaskPatch{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     dueDate,
		CategoryID:  categoryID,
	}
	if in.Priority != nil {
		p := models.Priority(*in.Priority)
		patch.Priority = &p
	}
	return patch, nil
}

// CreateCategory validates a create-category body.
func CreateCategory(body io.Reader) (models.CategoryDraft, error) {
	var in createCategoryBody
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		return models.CategoryDraft{}, badJSON()
	}

	errs := structErrors(in)
	if in.Color != "" && !colorPattern.MatchString(in.Color) {
		errs = append(errs, apperr.FieldError{Field: "color", Message: "Invalid color format"})
	}
	if len(errs) > 0 {
		return models.CategoryDraft{}, &apperr.ValidationError{Fields: errs}
	}
	return models.CategoryDraft{Name: in.Name, Color: in.Color}, nil
}

// TaskFilterQuery coerces list-endpoint query parameters into filters.
// Empty parameters count as absent. page is floored at 1 and limit clamped
// to [1,100]; both default when absent.
func TaskFilterQuery(q url.Values) (models.TaskFilters, error) {
	var f models.TaskFilters
	var errs []apperr.FieldError

	if s := q.Get("completed"); s != "" {
		switch s {
		case "true", "false":
			b := s == "true"
			f.Completed = &b
		default:
			errs = append(errs, apperr.FieldError{Field: "completed", Message: "must be true or false"})
		}
	}
	if s := q.Get("priority"); s != "" {
		switch p := models.Priority(s); p {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
			f.Priority = &p
		default:
			errs = append(errs, apperr.FieldError{Field: "priority", Message: "must be one of low medium high"})
		}
	}
	if s := q.Get("categoryId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: "categoryId", Message: "must be a valid UUID"})
		} else {
			f.CategoryID = &id
		}
	}
	if s := q.Get("search"); s != "" {
		if len(s) > 100 {
			errs = append(errs, apperr.FieldError{Field: "search", Message: "Search is too long"})
		} else {
			f.Search = &s
		}
	}
	if s := q.Get("dueDateBefore"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: "dueDateBefore", Message: "must be an ISO-8601 timestamp"})
		} else {
			f.DueDateBefore = &t
		}
	}
	if s := q.Get("dueDateAfter"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: "dueDateAfter", Message: "must be an ISO-8601 timestamp"})
		} else {
			f.DueDateAfter = &t
		}
	}
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: "page", Message: "must be an integer"})
		} else {
			f.Page = max(n, 1)
		}
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: "limit", Message: "must be an integer"})
		} else {
			f.Limit = min(max(n, 1), models.MaxLimit)
		}
	}

	if len(errs) > 0 {
		return models.TaskFilters{}, &apperr.ValidationError{Fields: errs}
	}
	f.Normalize()
	return f, nil
}

// UUIDList validates the id list of a bulk request.
func UUIDList(field string, raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, &apperr.ValidationError{Fields: []apperr.FieldError{
			{Field: field, Message: humanize(field) + " is required"},
		}}
	}
	var errs []apperr.FieldError
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			errs = append(errs, apperr.FieldError{Field: field, Message: s + " is not a valid UUID"})
			continue
		}
		ids = append(ids, id)
	}
	if len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}
	return ids, nil
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func badJSON() *apperr.ValidationError {
	return &apperr.ValidationError{Fields: []apperr.FieldError{
		{Field: "body", Message: "must be valid JSON"},
	}}
}

func structErrors(in any) []apperr.FieldError {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperr.FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func parseDate(field string, s *string, errs []apperr.FieldError) (*time.Time, []apperr.FieldError) {
	if s == nil {
		return nil, errs
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, append(errs, apperr.FieldError{Field: field, Message: "must be an ISO-8601 timestamp"})
	}
	return &t, errs
}

func parseUUID(field string, s *string, errs []apperr.FieldError) (*uuid.UUID, []apperr.FieldError) {
	if s == nil {
		return nil, errs
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, append(errs, apperr.FieldError{Field: field, Message: "must be a valid UUID"})
	}
	return &id, errs
}

func message(fe validator.FieldError) string {
	name := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "min":
		return name + " is required"
	case "max":
		return name + " is too long"
	case "oneof":
		return name + " must be one of " + fe.Param()
	default:
		return name + " is invalid"
	}
}

func humanize(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/hrdesk/internal/catalog"
	"github.com/alexanderramin/hrdesk/internal/domain"
	"github.com/alexanderramin/hrdesk/internal/filter"
	"github.com/alexanderramin/hrdesk/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/tidwall/gjson"
)

// formValues binds huh inputs to a set of named string fields.
type formValues struct {
	keys   []string
	values map[string]*string
}

func newFormValues(keys []string, initial map[string]string) *formValues {
	fv := &formValues{keys: keys, values: make(map[string]*string, len(keys))}
	for _, k := range keys {
		v := initial[k]
		fv.values[k] = &v
	}
	return fv
}

// Map returns the current values.
func (fv *formValues) Map() map[string]string {
	out := make(map[string]string, len(fv.keys))
	for _, k := range fv.keys {
		out[k] = *fv.values[k]
	}
	return out
}

// assignments returns key=value pairs for non-empty values, in field order.
func (fv *formValues) assignments() []string {
	var out []string
	for _, k := range fv.keys {
		if v := strings.TrimSpace(*fv.values[k]); v != "" {
			out = append(out, k+"="+v)
		}
	}
	return out
}

// createFields returns the top-level attributes a create form asks for.
// Columns that read nested paths are skipped.
func createFields(screen catalog.Screen) []string {
	var keys []string
	seen := map[string]bool{}
	for _, c := range screen.Columns {
		path := c.Path
		if path == "" {
			path = c.ID
		}
		if strings.Contains(path, ".") || path == "id" || seen[path] {
			continue
		}
		seen[path] = true
		keys = append(keys, path)
	}
	return keys
}

// createForm asks for each create field, prefilled from draft.
func createForm(screen catalog.Screen, draft map[string]string) (*huh.Form, *formValues) {
	keys := createFields(screen)
	fv := newFormValues(keys, draft)
	labels := map[string]string{}
	for _, c := range screen.Columns {
		labels[c.ID] = c.Header
	}

	fields := make([]huh.Field, 0, len(keys))
	for _, k := range keys {
		title := labels[k]
		if title == "" {
			title = k
		}
		fields = append(fields, huh.NewInput().Title(title).Value(fv.values[k]))
	}
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(hrdeskHuhTheme()).
		WithShowHelp(false)
	return form, fv
}

// editableFields returns the record's scalar fields except its id.
func editableFields(rec domain.Record) []domain.Field {
	var out []domain.Field
	for _, f := range rec.Scalars() {
		switch f.Key {
		case "id", "_id", "uuid":
			continue
		}
		out = append(out, f)
	}
	return out
}

// editForm asks for every scalar field of rec.
func editForm(rec domain.Record) (*huh.Form, *formValues) {
	fields := editableFields(rec)
	keys := make([]string, 0, len(fields))
	initial := make(map[string]string, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
		initial[f.Key] = f.Value
	}
	fv := newFormValues(keys, initial)

	inputs := make([]huh.Field, 0, len(fields))
	for _, f := range fields {
		in := huh.NewInput().Title(f.Key).Value(fv.values[f.Key])
		if f.Kind == gjson.Number {
			in = in.Validate(validateNumber)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, fv
	}
	form := huh.NewForm(huh.NewGroup(inputs...)).
		WithTheme(hrdeskHuhTheme()).
		WithShowHelp(false)
	return form, fv
}

// editedBody applies edited form values to rec.
func editedBody(rec domain.Record, fv *formValues) ([]byte, error) {
	return service.ApplyScalars(rec.Raw(), editableFields(rec), fv.Map())
}

// confirmForm asks a yes/no question.
func confirmForm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(hrdeskHuhTheme()).WithShowHelp(false)
}

// commentForm asks for a decision comment. Rejections require one.
func commentForm(decision service.Decision, result *string) *huh.Form {
	in := huh.NewText().
		Title("Comment").
		Value(result)
	if decision == service.Reject {
		in = in.Validate(requiredText("comment"))
	}
	return huh.NewForm(huh.NewGroup(in)).
		WithTheme(hrdeskHuhTheme()).
		WithShowHelp(false)
}

// filterDraft holds the editable state of a filter dialog.
type filterDraft struct {
	lists  map[string]*[]string
	texts  map[string]*string
	ranges map[string][2]*string
}

// filterForm builds the dialog for schema, prefilled from the controller's
// pending values. commit writes the edits back to the controller.
func filterForm(schema filter.Schema, ctl *filter.Controller, title string) (*huh.Form, func()) {
	pending := ctl.Pending()
	d := filterDraft{
		lists:  map[string]*[]string{},
		texts:  map[string]*string{},
		ranges: map[string][2]*string{},
	}

	var fields []huh.Field
	for _, f := range schema {
		label := f.Label
		if label == "" {
			label = f.ID
		}
		switch f.Kind {
		case filter.MultiSelect:
			selected := append([]string(nil), pending[f.ID]...)
			d.lists[f.ID] = &selected
			fields = append(fields, huh.NewMultiSelect[string]().
				Title(label).
				Options(options(f, false)...).
				Value(d.lists[f.ID]))
		case filter.Select:
			v := pending.Get(f.ID)
			d.texts[f.ID] = &v
			fields = append(fields, huh.NewSelect[string]().
				Title(label).
				Options(options(f, true)...).
				Value(d.texts[f.ID]))
		case filter.Range:
			lo, hi := pending.Range(f.ID)
			los, his := formatBound(lo), formatBound(hi)
			d.ranges[f.ID] = [2]*string{&los, &his}
			fields = append(fields,
				huh.NewInput().Title(label+" from").Value(&los).Validate(validateOptionalNumber),
				huh.NewInput().Title(label+" to").Value(&his).Validate(validateOptionalNumber),
			)
		default:
			v := pending.Get(f.ID)
			d.texts[f.ID] = &v
			fields = append(fields, huh.NewInput().Title(label).Value(d.texts[f.ID]))
		}
	}
	if len(fields) == 0 {
		return nil, func() {}
	}

	commit := func() {
		for id, v := range d.lists {
			ctl.SetList(id, *v)
		}
		for id, v := range d.texts {
			f, _ := schema.Field(id)
			if f.Kind == filter.Select {
				ctl.Select(id, *v)
			} else {
				ctl.SetText(id, *v)
			}
		}
		for id, r := range d.ranges {
			ctl.SetRange(id, parseBound(*r[0]), parseBound(*r[1]))
		}
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(title)).
		WithTheme(hrdeskHuhTheme()).
		WithShowHelp(false)
	return form, commit
}

func options(f filter.Field, withAny bool) []huh.Option[string] {
	var out []huh.Option[string]
	if withAny {
		out = append(out, huh.NewOption("Any", ""))
	}
	for _, o := range f.Options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		out = append(out, huh.NewOption(label, o.Value))
	}
	return out
}

func formatBound(n float64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func parseBound(s string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return n
}

func requiredText(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

func validateOptionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return validateNumber(s)
}

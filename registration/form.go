package registration

import "sync"

// Field is a single named form control.
type Field struct {
	Name  string
	Value string
}

// Payload is the flat JSON object posted to the registration endpoint.
type Payload map[string]string

// Form is the source of fields for a submission.
type Form interface {
	Fields() []Field
	Reset()
}

// Collect builds a Payload from the form's current fields. When a name
// repeats, the last value wins.
func Collect(form Form) Payload {
	fields := form.Fields()
	payload := make(Payload, len(fields))
	for _, f := range fields {
		payload[f.Name] = f.Value
	}
	return payload
}

// StaticForm is an in-memory Form with an ordered field list.
type StaticForm struct {
	mu     sync.Mutex
	fields []Field
}

func NewStaticForm(names ...string) *StaticForm {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name})
	}
	return &StaticForm{fields: fields}
}

// Set updates the value of the named field, appending it if absent.
func (f *StaticForm) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].Value = value
			return
		}
	}
	f.fields = append(f.fields, Field{Name: name, Value: value})
}

func (f *StaticForm) Fields() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Reset blanks every value and keeps the field names.
func (f *StaticForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.fields {
		f.fields[i].Value = ""
	}
}

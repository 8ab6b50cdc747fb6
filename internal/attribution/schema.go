package attribution

import (
	"workerscope/internal/model"
	"workerscope/pkg/constants"
)

// Field describes one source column and how its absence is handled.
type Field struct {
	Name     string
	Aliases  []string    // alternate source names, checked after Name
	Required bool        // the row cannot be used without it
	Default  interface{} // value used when an optional field is absent
	Output   bool        // carried into AttributedBuildRecord
}

// Schema is the field list of one source entity.
type Schema struct {
	Entity string
	Fields []Field
}

// VitalSchema describes a bosh vitals row.
var VitalSchema = Schema{
	Entity: "vital",
	Fields: []Field{
		{Name: "instance", Required: true},
		{Name: "cpu_sys", Required: true},
		{Name: "cpu_user", Required: true},
		{Name: "cpu_wait", Required: true},
	},
}

// ContainerSchema describes a fly container row.
var ContainerSchema = Schema{
	Entity: "container",
	Fields: []Field{
		{Name: "worker_name", Default: ""},
		{Name: "type", Default: ""},
		{Name: "state", Default: ""},
		{Name: "job_id", Default: constants.NoID},
		{Name: "build_id", Default: constants.NoID},
		{Name: "build_name", Default: constants.UnknownBuildName, Output: true},
		{Name: "job_name", Default: "", Output: true},
		{Name: "team_name", Default: ""},
		{Name: "step_name", Default: "", Output: true},
	},
}

// BuildSchema describes a fly build row.
var BuildSchema = Schema{
	Entity: "build",
	Fields: []Field{
		{Name: "build_id", Aliases: []string{"id"}, Required: true},
		{Name: "status", Required: true},
		{Name: "team_name", Default: "", Output: true},
		{Name: "pipeline_name", Default: "", Output: true},
		{Name: "job_name", Default: "", Output: true},
	},
}

// Field returns the named field. Unknown names yield an optional field
// with an empty default.
func (s Schema) Field(name string) Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return Field{Name: name, Default: ""}
}

// lookup returns the source key holding the field, if any.
func (s Schema) lookup(rec model.Record, name string) (string, bool) {
	f := s.Field(name)
	if rec.Has(f.Name) {
		return f.Name, true
	}
	for _, alias := range f.Aliases {
		if rec.Has(alias) {
			return alias, true
		}
	}
	return "", false
}

// String reads a string field, falling back to its default.
func (s Schema) String(rec model.Record, name string) (string, bool) {
	if key, ok := s.lookup(rec, name); ok {
		if v, ok := rec.String(key); ok {
			return v, true
		}
	}
	def, _ := s.Field(name).Default.(string)
	return def, false
}

// Int reads an integer field, falling back to its default.
func (s Schema) Int(rec model.Record, name string) (int64, bool) {
	if key, ok := s.lookup(rec, name); ok {
		if v, ok := rec.Int(key); ok {
			return v, true
		}
	}
	def, _ := s.Field(name).Default.(int64)
	return def, false
}

// Missing lists the required fields absent from rec.
func (s Schema) Missing(rec model.Record) []string {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if _, ok := s.lookup(rec, f.Name); !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// missingOutputs lists output fields absent from rec.
func (s Schema) missingOutputs(rec model.Record) []string {
	var missing []string
	for _, f := range s.Fields {
		if !f.Output || f.Default != "" {
			continue
		}
		if _, ok := s.lookup(rec, f.Name); !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

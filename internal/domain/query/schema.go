// Package query implementa el motor de listados compartido por todos los recursos:
// filtros tipados por esquema, ordenamiento estable y paginación.
//
// Cada recurso declara un Schema con la lista cerrada de campos filtrables
// y el tipo de predicado de cada uno. Las peticiones se decodifican contra ese
// esquema (JSON estricto o query-string con preprocesamiento explícito) y el
// resultado, un Query, se evalúa en memoria (Apply) o se compila a SQL en la
// capa de infraestructura.
package query

import "fmt"

// Kind tipo de dato (y de predicado) de un campo.
type Kind int

const (
	KindString     Kind = iota // igualdad exacta o substring según Match
	KindNumber                 // igualdad exacta o rango {from,to}
	KindBool                   // pertenencia a un conjunto de booleanos
	KindDate                   // rango inclusivo {from,to}
	KindLanguage               // LanguageString: substring sobre cualquier idioma
	KindStringList             // lista de strings: contiene el valor
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindLanguage:
		return "language"
	case KindStringList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Match modo de comparación para campos string.
type Match int

const (
	MatchExact     Match = iota // igualdad, sensible a mayúsculas
	MatchSubstring              // substring sin distinguir mayúsculas
)

// Field describe un campo filtrable/ordenable de un recurso.
type Field struct {
	Name     string
	Kind     Kind
	Match    Match
	Column   string // columna SQL; vacío = atributo dentro del JSONB attributes
	Sortable bool
	Editable bool
	Required bool
	Ref      string // recurso referenciado por id (ej. "categories")
}

// Attribute informa si el campo vive en el mapa de atributos de extensión.
func (f Field) Attribute() bool { return f.Column == "" }

// Schema esquema cerrado de campos de un recurso.
type Schema struct {
	Name   string
	Batch  bool // expone edición masiva
	Fields []Field
	index  map[string]int
}

// NewSchema construye un esquema e indexa sus campos por nombre.
func NewSchema(name string, batch bool, fields ...Field) *Schema {
	s := &Schema{Name: name, Batch: batch, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic("query: campo duplicado " + name + "." + f.Name)
		}
		s.index[f.Name] = i
	}
	return s
}

// Field devuelve el campo por nombre.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Attributes devuelve los campos de extensión (los que no son columnas base).
func (s *Schema) Attributes() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Attribute() {
			out = append(out, f)
		}
	}
	return out
}

// Refs devuelve los campos que referencian al recurso indicado.
func (s *Schema) Refs(target string) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Ref == target {
			out = append(out, f)
		}
	}
	return out
}

// NormalizeAttributes convierte atributos leídos del store (JSON genérico) a los tipos del
// esquema. Los valores que no encajan o los campos que el esquema ya no declara se descartan.
func (s *Schema) NormalizeAttributes(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		f, ok := s.Field(k)
		if !ok || !f.Attribute() || v == nil {
			continue
		}
		if n, err := f.Coerce(v); err == nil && n != nil {
			out[k] = n
		}
	}
	return out
}

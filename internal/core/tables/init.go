// Package tables registers every table schema with the core registry.
// Import this package for its side effects before opening a core.Service.
package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

// Column helpers keep the schema declarations one line per column.

func number(name string) core.Field { return core.Field{Name: name, Type: core.FieldNumber} }
func text(name string) core.Field   { return core.Field{Name: name, Type: core.FieldString} }
func date(name string) core.Field   { return core.Field{Name: name, Type: core.FieldDate} }
func flag(name string) core.Field   { return core.Field{Name: name, Type: core.FieldBool} }
func jsonb(name string) core.Field  { return core.Field{Name: name, Type: core.FieldJSON} }

func enum(name string, values ...string) core.Field {
	return core.Field{Name: name, Type: core.FieldString, EnumValues: values}
}

// entity prefixes the id and date columns every entity table starts with.
func entity(fields ...core.Field) []core.Field {
	return append([]core.Field{number("id"), date("date")}, fields...)
}

// form prefixes the submission date column every form table starts with.
func form(fields ...core.Field) []core.Field {
	return append([]core.Field{date("date")}, fields...)
}

// personColumns are shared by tutors, learners and request submissions.
func personColumns() []core.Field {
	return []core.Field{
		text("friendlyFullName"),
		text("friendlyName"),
		text("firstName"),
		text("lastName"),
		number("grade"),
		number("studentId"),
		text("email"),
		text("phone"),
		text("contactPref"),
	}
}

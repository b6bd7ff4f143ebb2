package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

func init() {
	registerTutors()
	registerLearners()
}

func registerTutors() {
	fields := entity(personColumns()...)
	fields = append(fields,
		jsonb("mods"),
		jsonb("modsPref"),
		jsonb("dropInMods"),
		text("subjectList"),
		jsonb("attendance"),
	)
	core.Register(core.TableInfo{Name: core.TableTutors, Fields: fields})
}

func registerLearners() {
	fields := entity(personColumns()...)
	fields = append(fields, jsonb("attendance"))
	core.Register(core.TableInfo{Name: core.TableLearners, Fields: fields})
}

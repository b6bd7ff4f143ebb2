package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

func init() {
	registerRequestForm()
	registerSpecialRequestForm()
	registerAttendanceForm()
	registerTutorRegistrationForm()
}

func registerRequestForm() {
	core.Register(core.TableInfo{
		Name:   core.TableRequestForm,
		IsForm: true,
		Fields: form(
			text("firstName"),
			text("lastName"),
			text("friendlyName"),
			number("studentId"),
			number("grade"),
			text("email"),
			text("phone"),
			text("contactPref"),
			text("mods"),
			text("subject"),
		),
	})
}

func registerSpecialRequestForm() {
	core.Register(core.TableInfo{
		Name:   core.TableSpecialRequestForm,
		IsForm: true,
		Fields: form(
			text("teacherName"),
			text("teacherEmail"),
			text("room"),
			text("mods"),
			text("subject"),
			text("studentNames"),
		),
	})
}

func registerAttendanceForm() {
	core.Register(core.TableInfo{
		Name:   core.TableAttendanceForm,
		IsForm: true,
		Fields: form(
			date("dateOfAttendance"),
			number("studentId"),
			number("mod"),
			number("minutesPresent"),
			flag("markForReset"),
		),
	})
}

func registerTutorRegistrationForm() {
	core.Register(core.TableInfo{
		Name:   core.TableTutorRegistrationForm,
		IsForm: true,
		Fields: form(
			text("firstName"),
			text("lastName"),
			text("friendlyName"),
			number("studentId"),
			number("grade"),
			text("email"),
			text("phone"),
			text("contactPref"),
			text("mods"),
			text("modsPref"),
			text("dropInMods"),
			text("subjectList"),
		),
	})
}

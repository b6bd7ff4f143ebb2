package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

func init() {
	registerRequests()
	registerRequestSubmissions()
	registerBookings()
	registerMatchings()
}

func registerRequests() {
	core.Register(core.TableInfo{
		Name: core.TableRequests,
		Fields: entity(
			number("learner"),
			jsonb("mods"),
			text("subject"),
			text("specialRoom"),
			flag("isSpecial"),
			enum("status", "unchecked", "inProgress", "booked"),
		),
	})
}

func registerRequestSubmissions() {
	fields := entity(personColumns()...)
	fields = append(fields,
		jsonb("mods"),
		text("subject"),
		flag("isSpecial"),
		text("annotation"),
		enum("status", "unchecked", "pending", "checked"),
	)
	core.Register(core.TableInfo{Name: core.TableRequestSubmissions, Fields: fields})
}

func registerBookings() {
	core.Register(core.TableInfo{
		Name: core.TableBookings,
		Fields: entity(
			number("request"),
			number("tutor"),
			number("mod"),
			enum("status", "unsent", "unconfirmed", "ignore", "finalized"),
		),
	})
}

func registerMatchings() {
	core.Register(core.TableInfo{
		Name: core.TableMatchings,
		Fields: entity(
			number("learner"),
			number("tutor"),
			text("subject"),
			number("mod"),
			text("specialRoom"),
		),
	})
}

package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

func init() {
	registerAttendanceLog()
	registerAttendanceDays()
}

func registerAttendanceLog() {
	core.Register(core.TableInfo{
		Name: core.TableAttendanceLog,
		Fields: entity(
			date("dateOfAttendance"),
			text("validity"),
			number("mod"),
			number("tutor"),
			number("learner"),
			number("minutesForTutor"),
			number("minutesForLearner"),
			flag("markForReset"),
		),
	})
}

func registerAttendanceDays() {
	core.Register(core.TableInfo{
		Name: core.TableAttendanceDays,
		Fields: entity(
			date("dateOfAttendance"),
			text("abDay"),
			enum("status", core.DayStatuses...),
		),
	})
}

package tables

import "github.com/JonMunkholm/tutoradmin/internal/core"

func init() {
	core.Register(core.TableInfo{
		Name: core.TableOperationLog,
		Fields: entity(
			text("runId"),
			text("operation"),
			enum("severity", "low", "medium", "high", "critical"),
			text("target"),
			jsonb("args"),
			text("result"),
			text("ipAddress"),
		),
	})
}

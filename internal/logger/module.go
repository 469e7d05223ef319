package logger

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module provides the slog logger and installs it as the process default.
var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(slog.SetDefault),
)

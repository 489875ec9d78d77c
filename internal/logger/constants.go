package logger

// Level names accepted from LOG_LEVEL
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Output formats accepted from LOG_FORMAT
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

const (
	DefaultServiceName = "idlegarden"
	DefaultVersion     = "dev"
	ProductionVersion  = "1.0.0"
)

// Values of ENVIRONMENT that change logger defaults
const (
	EnvironmentDev        = "dev"
	EnvironmentProduction = "prod"
)

// Attribute keys shared by every garden log line. Settlement code logs
// plot and revision under the same names so a single player's history can
// be filtered out of aggregated logs.
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
	AttrKeyUserID      = "user_id"
	AttrKeyPlotID      = "plot_id"
	AttrKeyRevision    = "revision"
)

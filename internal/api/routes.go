package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"

	TokenRoute        = "/v1/oauth/tokens"
	RefreshTokenRoute = "/v1/token/refresh"

	PrincipalRoute = "/v1/principal"

	AuditParent       = "/v1/audit/"
	RecentAuditsRoute = AuditParent + "recent"

	TaskParent       = "/v1/tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)

// AdminScope is required for the audit log and the task routes.
const AdminScope = "admin"

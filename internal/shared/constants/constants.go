// Package constants holds cross-layer constants.
package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableUsers            = "users"
	TableUserProfiles     = "user_profiles"
	TableCharacters       = "characters"
	TableOwnerships       = "character_ownerships"
	TableOrganizations    = "organizations"
	TableAlliances        = "alliances"
	TableAuthStates       = "auth_states"
	TableUserStates       = "user_states"
	TableGroups           = "groups"
	TableStateGroupBinds  = "state_group_bindings"
	TableGroupMemberships = "group_memberships"
	TableAutoGroupRules   = "auto_group_rules"
	TableAccountLinks     = "service_account_links"
	TableNotifications    = "notifications"
	TableUserCredentials  = "user_credentials"
)

package migration

import (
	"aegis/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every persistence model the schema carries, in
// foreign-key dependency order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.ProfileModel{},
		&models.OrganizationModel{},
		&models.AllianceModel{},
		&models.CharacterModel{},
		&models.OwnershipModel{},
		&models.StateModel{},
		&models.UserStateModel{},
		&models.AutoGroupRuleModel{},
		&models.GroupModel{},
		&models.StateGroupBindingModel{},
		&models.GroupMembershipModel{},
		&models.AccountLinkModel{},
		&models.NotificationModel{},
		&models.CredentialModel{},
	}
}

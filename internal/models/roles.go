package models

// Роли пользователей платформы DriveDrop.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
	RoleDriver = "driver"
	RoleBroker = "broker"
)

// HasRole проверяет, есть ли у пользователя указанная роль.
func HasRole(userRoles []string, targetRole string) bool {
	for _, role := range userRoles {
		if role == targetRole {
			return true
		}
	}
	return false
}

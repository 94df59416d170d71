package middleware

import (
	"net/http"

	"dentalclinic-backend/internal/models"
	"dentalclinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Operation names every gated action in the API.
type Operation string

const (
	OpViewUsers  Operation = "view_users"
	OpCreateUser Operation = "create_user"
	OpUpdateUser Operation = "update_user"
	OpDeleteUser Operation = "delete_user"

	OpViewTreatments   Operation = "view_treatments"
	OpManageTreatments Operation = "manage_treatments"

	OpViewAppointments   Operation = "view_appointments"
	OpManageAppointments Operation = "manage_appointments"

	OpViewPayments   Operation = "view_payments"
	OpUpdatePayments Operation = "update_payments"

	OpViewDashboard Operation = "view_dashboard"
)

// permissions is the static role -> operation table. Staff (manager and
// receptionist) run the clinic; dentists and patients have no admin access.
var permissions = map[Operation][]string{
	OpViewUsers:  {models.RoleManager, models.RoleReceptionist},
	OpCreateUser: {models.RoleManager, models.RoleReceptionist},
	OpUpdateUser: {models.RoleManager, models.RoleReceptionist},
	OpDeleteUser: {models.RoleManager},

	OpViewTreatments:   {models.RoleManager, models.RoleReceptionist},
	OpManageTreatments: {models.RoleManager},

	OpViewAppointments:   {models.RoleManager, models.RoleReceptionist},
	OpManageAppointments: {models.RoleManager, models.RoleReceptionist},

	OpViewPayments:   {models.RoleManager, models.RoleReceptionist},
	OpUpdatePayments: {models.RoleManager, models.RoleReceptionist},

	OpViewDashboard: {models.RoleManager},
}

// CanPerform reports whether a role may run an operation.
func CanPerform(role string, op Operation) bool {
	for _, allowed := range permissions[op] {
		if allowed == role {
			return true
		}
	}
	return false
}

// CanEditRole enforces the role hierarchy for user edits: managers edit
// anyone, receptionists edit anyone except managers and other receptionists,
// everyone else edits no one.
func CanEditRole(actorRole, targetRole string) bool {
	switch actorRole {
	case models.RoleManager:
		return true
	case models.RoleReceptionist:
		return targetRole != models.RoleManager && targetRole != models.RoleReceptionist
	}
	return false
}

// RequirePermission gates a route on the permission table. Must run after
// AuthMiddleware.
func RequirePermission(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Authentication required", nil)
			c.Abort()
			return
		}

		if !CanPerform(user.Role, op) {
			utils.APIResponse(c, http.StatusForbidden, false, "Insufficient permissions", gin.H{
				"operation": op,
				"role":      user.Role,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

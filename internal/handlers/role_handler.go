package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/services"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// @Summary List Roles
// @Description Returns every role with its capabilities and texts per listing
// @Tags Roles
// @Produce json
// @Success 200 {array} services.RolePolicies
// @Security BearerAuth
// @Router /roles [get]
func (h *RoleHandler) Index(c *gin.Context) {
	policies, err := h.roleService.ListPolicies()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": policies})
}

// @Summary Show Role
// @Tags Roles
// @Produce json
// @Param role path string true "Role"
// @Success 200 {object} services.RolePolicies
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /roles/{role} [get]
func (h *RoleHandler) Show(c *gin.Context) {
	policy, err := h.roleService.GetPolicy(models.Role(c.Param("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// @Summary Current Role
// @Description Returns the caller's own capabilities, used by the UI shell to build navigation
// @Tags Roles
// @Produce json
// @Success 200 {object} services.RolePolicies
// @Security BearerAuth
// @Router /me/policy [get]
func (h *RoleHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	policy, err := h.roleService.GetPolicy(actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

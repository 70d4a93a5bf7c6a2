package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
)

// RoleHandler exposes the permission table read-only.
type RoleHandler struct {
	gate *access.Gate
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(gate *access.Gate) *RoleHandler {
	return &RoleHandler{gate: gate}
}

type roleEntry struct {
	Role       model.Role   `json:"role"`
	Manageable []model.Role `json:"manageable"`
}

// List godoc
// GET /api/v1/roles
// Returns every role with the roles it may manage, in a fixed order.
func (h *RoleHandler) List(c *gin.Context) {
	table := h.gate.Table()
	entries := make([]roleEntry, 0, len(model.AllRoles))
	for _, r := range model.AllRoles {
		entries = append(entries, roleEntry{Role: r, Manageable: table[r]})
	}
	response.Success(c, http.StatusOK, entries)
}

// Manageable godoc
// GET /api/v1/roles/:role/manageable
func (h *RoleHandler) Manageable(c *gin.Context) {
	role, ok := model.ParseRole(c.Param("role"))
	if !ok {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidRole,
			fmt.Sprintf("Unknown role %q.", c.Param("role")))
		return
	}
	response.Success(c, http.StatusOK, roleEntry{Role: role, Manageable: h.gate.Manageable(role)})
}

package api

import (
	"net/http"

	"fast-order/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createUser(c *gin.Context) {
	var req service.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "User created successfully.", user)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully.", user)
}

func (h *Handler) getUserByEmail(c *gin.Context) {
	user, err := h.users.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User retrieved successfully.", user)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Users retrieved successfully.", users)
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req service.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User updated successfully.", user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "User deleted successfully.", nil)
}

func (h *Handler) createRole(c *gin.Context) {
	var req service.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	role, err := h.roles.CreateRole(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "Role created successfully.", role)
}

func (h *Handler) getRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	role, err := h.roles.GetRole(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Role retrieved successfully.", role)
}

func (h *Handler) getRoleByName(c *gin.Context) {
	role, err := h.roles.GetRoleByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Role retrieved successfully.", role)
}

func (h *Handler) listRoles(c *gin.Context) {
	roles, err := h.roles.ListRoles(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, "Roles retrieved successfully.", roles)
}

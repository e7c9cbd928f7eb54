package rest

import "net/http"

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req createRoleRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	role, err := h.roles.Create(r.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, msgRoleCreated, role)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRolesRetrieved, roles)
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, msgPermissionsRetrieved, h.roles.Permissions())
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	role, err := h.roles.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRoleRetrieved, role)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	var req updateRoleRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	role, err := h.roles.Update(r.Context(), id, req.patch())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRoleUpdated, role)
}

func (h *Handler) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	role, err := h.roles.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRoleDeleted, role)
}

package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/punit-mobi/RBAC-project/internal/server/auth"
)

// principal returns the caller attached by requirePermission.
func principal(r *http.Request) *auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// pathID validates the {id} path variable.
func pathID(r *http.Request, errs *fieldErrors) string {
	id := mux.Vars(r)["id"]
	checkID("id", id, errs)
	return id
}

// pageFrom decodes page and limit from the query string.
func (h *Handler) pageFrom(r *http.Request, errs *fieldErrors) pageQuery {
	q := pageQuery{Page: 1, Limit: 10}
	h.v.bindQuery(defaultPagination(r.URL.Query()), &q, errs)
	return q
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	q := h.pageFrom(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	users, total, err := h.users.List(r.Context(), q.page())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, msgUsersRetrieved, users, q, total)
}

func (h *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), principal(r).UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgProfileRetrieved, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgProfileRetrieved, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	var req updateUserRequest
	photo, ok := h.bindBody(w, r, &req, &errs)
	if !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	user, err := h.users.Update(r.Context(), principal(r), id, req.patch(), photo)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgUserUpdated, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	if err := h.users.Delete(r.Context(), principal(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgUserDeleted, nil)
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	var req assignRoleRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	view, err := h.users.AssignRole(r.Context(), id, req.RoleID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRoleAssigned, view)
}

func (h *Handler) handleRemoveRole(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	view, err := h.users.RemoveRole(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgRoleRemoved, view)
}

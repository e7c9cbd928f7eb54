package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/punit-mobi/RBAC-project/internal/server/models"
)

type registerResponse struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	Role      string `json:"role"`
}

type loginRole struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type loginUser struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"first_name"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	Role      *loginRole `json:"role"`
}

type loginResponse struct {
	User                 loginUser `json:"user"`
	MasterData           any       `json:"master_data"`
	MasterDataSyncFailed string    `json:"masterDataSyncFailed"`
}

func setBearer(w http.ResponseWriter, token string) {
	w.Header().Set("Authorization", "Bearer "+token)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req registerRequest
	photo, ok := h.bindBody(w, r, &req, &errs)
	if !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	res, err := h.auth.Register(r.Context(), req.input(photo))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	setBearer(w, res.Token)
	h.respond(w, http.StatusOK, msgUserRegistered, registerResponse{
		FirstName: res.User.FirstName,
		Email:     res.User.Email,
		IsAdmin:   res.User.IsAdmin,
		Role:      res.RoleName,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req loginRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := loginResponse{User: loginUserView(res.User), MasterData: map[string]any{}, MasterDataSyncFailed: "Yes"}
	if res.MasterData != nil {
		out.MasterData = res.MasterData
		out.MasterDataSyncFailed = "No"
	}
	setBearer(w, res.Token)
	h.respond(w, http.StatusOK, msgUserSignedIn, out)
}

func loginUserView(u *models.User) loginUser {
	v := loginUser{ID: u.ID, FirstName: u.FirstName, Email: u.Email, IsAdmin: u.IsAdmin}
	if u.Role != nil {
		v.Role = &loginRole{Name: u.Role.Name, Permissions: u.Role.Permissions}
	}
	return v
}

func (h *Handler) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req passwordResetRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgResetLinkSent, nil)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req resetPasswordRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	token := mux.Vars(r)["token"]
	if err := h.auth.ResetPassword(r.Context(), token, req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgPasswordReset, nil)
}


package rest

import (
	"errors"
	"net/http"

	"github.com/punit-mobi/RBAC-project/internal/common"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
)

type invalidPermissions struct {
	InvalidPermissions []string `json:"invalidPermissions"`
}

// writeServiceError maps a service error to its response.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var permErr *services.InvalidPermissionsError
	switch {
	case errors.As(err, &permErr):
		h.respondError(w, r, http.StatusBadRequest, permErr.Error(), invalidPermissions{permErr.Permissions}, err)
	case errors.Is(err, common.ErrUserExists):
		h.respondError(w, r, http.StatusConflict, msgUserExists, nil, err)
	case errors.Is(err, common.ErrRoleExists):
		h.respondError(w, r, http.StatusConflict, msgRoleExists, nil, err)
	case errors.Is(err, common.ErrRoleAssignment):
		h.respondError(w, r, http.StatusInternalServerError, msgRoleAssignmentFailed, nil, err)
	case errors.Is(err, common.ErrInvalidCredentials):
		h.respondError(w, r, http.StatusUnauthorized, msgInvalidCredentials, nil, err)
	case isAuthError(err):
		h.respondError(w, r, http.StatusUnauthorized, msgAuthenticationFailed, nil, err)
	case errors.Is(err, common.ErrorForbidden):
		h.respondError(w, r, http.StatusForbidden, msgInsufficientPerms, nil, err)
	case errors.Is(err, common.ErrUserNotFound):
		h.respondError(w, r, http.StatusNotFound, msgUserNotFound, nil, err)
	case errors.Is(err, common.ErrRoleNotFound):
		h.respondError(w, r, http.StatusNotFound, msgRoleNotFound, nil, err)
	case errors.Is(err, common.ErrPostNotFound):
		h.respondError(w, r, http.StatusNotFound, msgPostNotFound, nil, err)
	case errors.Is(err, common.ErrMasterDataNotFound):
		h.respondError(w, r, http.StatusNotFound, msgMasterDataNotFound, nil, err)
	case errors.Is(err, common.ErrInvalidMasterType):
		h.respondError(w, r, http.StatusBadRequest, msgInvalidMasterDataType, nil, err)
	case errors.Is(err, common.ErrResetTokenNotFound):
		h.respondError(w, r, http.StatusBadRequest, msgInvalidResetToken, nil, err)
	case errors.Is(err, common.ErrPhotoStoreDisabled):
		h.respondError(w, r, http.StatusBadRequest, msgPhotoStoreDisabled, nil, err)
	case errors.Is(err, common.ErrUnsupportedFileType):
		h.respondError(w, r, http.StatusBadRequest, msgUnsupportedFileType, nil, err)
	default:
		h.respondInternal(w, r, err)
	}
}

// bindBody reads the request body into dst, collecting field errors into
// errs. It returns false after writing a response for a body that cannot
// be read at all.
func (h *Handler) bindBody(w http.ResponseWriter, r *http.Request, dst any, errs *fieldErrors) (*services.PhotoUpload, bool) {
	raw, photo, err := readBody(w, r)
	if err != nil {
		if errors.Is(err, errPhotoTooLarge) {
			h.respondError(w, r, http.StatusBadRequest, msgValidationFailed, msgFileTooLarge, err)
			return nil, false
		}
		h.respondError(w, r, http.StatusBadRequest, msgValidationFailed, err.Error(), err)
		return nil, false
	}
	if err := h.v.bindBody(raw, dst, errs); err != nil {
		if errors.Is(err, errInvalidAddressJSON) {
			h.respondError(w, r, http.StatusBadRequest, msgValidationFailed, msgInvalidAddressJSON, err)
			return nil, false
		}
		h.respondError(w, r, http.StatusBadRequest, msgValidationFailed, err.Error(), err)
		return nil, false
	}
	return photo, true
}

// rejectInvalid writes the 400 validation response when errs is not empty.
func (h *Handler) rejectInvalid(w http.ResponseWriter, r *http.Request, errs fieldErrors) bool {
	if len(errs) == 0 {
		return false
	}
	h.respondError(w, r, http.StatusBadRequest, msgValidationFailed, errs.payload(), nil)
	return true
}

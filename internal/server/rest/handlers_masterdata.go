package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) handleListMasterData(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var q masterDataQuery
	h.v.bindQuery(r.URL.Query(), &q, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	snap, err := h.masterData.List(r.Context(), q.Type, q.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgDataRetrieved, snap)
}

func (h *Handler) handleSyncMasterData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.masterData.Sync(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgMasterDataSynced, snap)
}

func (h *Handler) handleMasterDataByType(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var q masterDataTypeQuery
	h.v.bindQuery(r.URL.Query(), &q, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	data, err := h.masterData.ByType(r.Context(), mux.Vars(r)["type"], q.IsActive)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgDataRetrieved, data)
}

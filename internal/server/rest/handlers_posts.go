package rest

import "net/http"

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	q := h.pageFrom(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	posts, total, err := h.posts.List(r.Context(), q.page())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respondPage(w, msgPostsRetrieved, posts, q, total)
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgPostRetrieved, post)
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	var req createPostRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	post, err := h.posts.Create(r.Context(), principal(r), req.Title, req.Content)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusCreated, msgPostCreated, post)
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	var req updatePostRequest
	if _, ok := h.bindBody(w, r, &req, &errs); !ok || h.rejectInvalid(w, r, errs) {
		return
	}

	post, err := h.posts.Update(r.Context(), principal(r), id, req.patch())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgPostUpdated, post)
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	var errs fieldErrors
	id := pathID(r, &errs)
	if h.rejectInvalid(w, r, errs) {
		return
	}

	if err := h.posts.Delete(r.Context(), principal(r), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, msgPostDeleted, nil)
}

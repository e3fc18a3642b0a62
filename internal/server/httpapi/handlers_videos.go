package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type addVideoRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	list, err := s.bookmarks.ListBookmarks(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) addVideo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req addVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	b, created, err := s.bookmarks.AddBookmark(r.Context(), req.URL, userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, b)
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	b, err := s.bookmarks.GetBookmark(r.Context(), id, userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) deleteVideo(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.bookmarks.RemoveBookmark(r.Context(), id, userID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) videoThumbnail(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	url, err := s.bookmarks.ThumbnailURL(r.Context(), id, userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// pathID parses the {id} URL parameter. Non-numeric ids cannot name any
// bookmark, so they get the same 404 as a missing one.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

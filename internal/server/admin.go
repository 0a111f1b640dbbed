package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/artpar/portfolio/internal/content"
	"github.com/artpar/portfolio/internal/portfolio"
	"github.com/go-chi/chi/v5"
)

// reorderKinds maps URL segments to orderable kinds.
var reorderKinds = map[string]content.Kind{
	"categories":   content.KindCategories,
	"tags":         content.KindTags,
	"items":        content.KindItems,
	"ab-tests":     content.KindABTests,
	"achievements": content.KindAchievements,
	"reviews":      content.KindReviews,
	"faqs":         content.KindFAQs,
}

// jsonCreate decodes a T, runs fn and writes the result with 201.
func jsonCreate[T, R any](s *Server, fn func(r *http.Request, in T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r, in)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// jsonUpdate decodes a T, runs fn with the {id} param and writes the
// result with 200.
func jsonUpdate[T, R any](s *Server, fn func(r *http.Request, id string, in T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if !decodeJSON(w, r, &in) {
			return
		}
		out, err := fn(r, chi.URLParam(r, "id"), in)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// deleteByID runs fn with the {id} param and answers 204.
func deleteByID(s *Server, fn func(r *http.Request, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r, chi.URLParam(r, "id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleAdminCategories(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.AllCategoriesAdmin)(w, r)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.CategoryInput) (content.Category, error) {
		return s.portfolio.CreateCategory(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.CategoryInput) (content.Category, error) {
		return s.portfolio.UpdateCategory(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleCategoryVisibility(w http.ResponseWriter, r *http.Request) {
	type visibility struct {
		IsHidden bool `json:"is_hidden"`
	}
	jsonUpdate(s, func(r *http.Request, id string, in visibility) (content.Category, error) {
		return s.portfolio.SetCategoryHidden(r.Context(), id, in.IsHidden)
	})(w, r)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteCategory(r.Context(), id)
	})(w, r)
}

func (s *Server) handleAdminTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.portfolio.SearchTags(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []content.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.TagInput) (content.Tag, error) {
		return s.portfolio.CreateTag(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.TagInput) (content.Tag, error) {
		return s.portfolio.UpdateTag(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteTag(r.Context(), id)
	})(w, r)
}

func (s *Server) handleAdminItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.portfolio.AdminItems(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []content.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// parseMultipart reads a bounded multipart form. It answers 400 itself
// and returns false on failure.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid upload"})
		return false
	}
	return true
}

// formFile returns the named upload, or nil when the field is absent.
func formFile(r *http.Request, field string) (*portfolio.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &portfolio.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (s *Server) itemInput(w http.ResponseWriter, r *http.Request) (portfolio.ItemInput, bool) {
	if !s.parseMultipart(w, r) {
		return portfolio.ItemInput{}, false
	}
	file, err := formFile(r, "file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid upload"})
		return portfolio.ItemInput{}, false
	}
	return portfolio.ItemInput{
		CategoryID: r.PostFormValue("category_id"),
		TagIDs:     r.PostForm["tag_ids"],
		File:       file,
	}, true
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	in, ok := s.itemInput(w, r)
	if !ok {
		return
	}
	item, err := s.portfolio.CreateItem(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	in, ok := s.itemInput(w, r)
	if !ok {
		return
	}
	item, err := s.portfolio.UpdateItem(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteItem(r.Context(), id)
	})(w, r)
}

func (s *Server) handleToggleStar(w http.ResponseWriter, r *http.Request) {
	res, err := s.portfolio.ToggleStar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	ids, err := s.portfolio.ApplyPreset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "presetID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tag_ids": ids})
}

func (s *Server) abTestInput(w http.ResponseWriter, r *http.Request) (portfolio.ABTestInput, bool) {
	if !s.parseMultipart(w, r) {
		return portfolio.ABTestInput{}, false
	}
	a, errA := formFile(r, portfolio.VersionA)
	b, errB := formFile(r, portfolio.VersionB)
	if errA != nil || errB != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid upload"})
		return portfolio.ABTestInput{}, false
	}
	return portfolio.ABTestInput{
		VideoTitle: r.PostFormValue("video_title"),
		VersionA:   a,
		VersionB:   b,
	}, true
}

func (s *Server) handleCreateABTest(w http.ResponseWriter, r *http.Request) {
	in, ok := s.abTestInput(w, r)
	if !ok {
		return
	}
	test, err := s.portfolio.CreateABTest(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, test)
}

func (s *Server) handleUpdateABTest(w http.ResponseWriter, r *http.Request) {
	in, ok := s.abTestInput(w, r)
	if !ok {
		return
	}
	test, err := s.portfolio.UpdateABTest(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, test)
}

func (s *Server) handleDeleteABTest(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteABTest(r.Context(), id)
	})(w, r)
}

func (s *Server) handleCreateAchievement(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.AchievementInput) (content.Achievement, error) {
		return s.portfolio.CreateAchievement(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdateAchievement(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.AchievementInput) (content.Achievement, error) {
		return s.portfolio.UpdateAchievement(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleDeleteAchievement(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteAchievement(r.Context(), id)
	})(w, r)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.ReviewInput) (content.Review, error) {
		return s.portfolio.CreateReview(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.ReviewInput) (content.Review, error) {
		return s.portfolio.UpdateReview(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteReview(r.Context(), id)
	})(w, r)
}

func (s *Server) handleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.FAQInput) (content.FAQ, error) {
		return s.portfolio.CreateFAQ(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.FAQInput) (content.FAQ, error) {
		return s.portfolio.UpdateFAQ(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteFAQ(r.Context(), id)
	})(w, r)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.Presets)(w, r)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	jsonCreate(s, func(r *http.Request, in portfolio.PresetInput) (content.TagPreset, error) {
		return s.portfolio.CreatePreset(r.Context(), in)
	})(w, r)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	jsonUpdate(s, func(r *http.Request, id string, in portfolio.PresetInput) (content.TagPreset, error) {
		return s.portfolio.UpdatePreset(r.Context(), id, in)
	})(w, r)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeletePreset(r.Context(), id)
	})(w, r)
}

func (s *Server) handleSetProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ThumbnailsInProgress int64 `json:"thumbnails_in_progress"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := s.portfolio.SetProgress(r.Context(), body.ThumbnailsInProgress)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.Submissions)(w, r)
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteSubmission(r.Context(), id)
	})(w, r)
}

func (s *Server) handleTagRequests(w http.ResponseWriter, r *http.Request) {
	list(s, s.portfolio.TagRequests)(w, r)
}

func (s *Server) handleApproveTagRequest(w http.ResponseWriter, r *http.Request) {
	tag, err := s.portfolio.ApproveTagRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleDeleteTagRequest(w http.ResponseWriter, r *http.Request) {
	deleteByID(s, func(r *http.Request, id string) error {
		return s.portfolio.DeleteTagRequest(r.Context(), id)
	})(w, r)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	kind, ok := reorderKinds[chi.URLParam(r, "kind")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
		return
	}
	var body struct {
		MovedID  string `json:"moved_id"`
		TargetID string `json:"target_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	entries, err := s.portfolio.Reorder(r.Context(), kind, body.MovedID, body.TargetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.portfolio.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	c, err := s.portfolio.Counts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

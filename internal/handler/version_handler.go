package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/speechbox/internal/middleware"
	"github.com/hitoshi/speechbox/internal/model"
	"github.com/hitoshi/speechbox/internal/validate"
	"github.com/hitoshi/speechbox/internal/version"
)

// 目標時間（分）の許容範囲
const (
	minTargetDurationMinutes = 1
	maxTargetDurationMinutes = 600
)

// VersionServiceInterface はバージョンハンドラーが必要とするサービスインターフェース。
type VersionServiceInterface interface {
	// Create は指定スピーチに新しいバージョンを作成する。
	Create(ctx context.Context, userID, speechID string, in version.CreateInput) (*model.SpeechVersion, error)
	// Update はバージョンを部分更新する。
	Update(ctx context.Context, userID, speechID, versionID string, in version.UpdateInput) (*model.SpeechVersion, error)
	// Delete はバージョンを削除する。
	Delete(ctx context.Context, userID, speechID, versionID string) error
	// List は指定スピーチのバージョン一覧を返す。
	List(ctx context.Context, userID, speechID string, preferredOnly bool) ([]*model.SpeechVersion, error)
}

// VersionHandler はスピーチバージョン管理のHTTPハンドラー。
type VersionHandler struct {
	service  VersionServiceInterface
	recorder OperationRecorder
}

// NewVersionHandler はVersionHandlerを生成する。recorderはnil許容。
func NewVersionHandler(service VersionServiceInterface, recorder OperationRecorder) *VersionHandler {
	return &VersionHandler{
		service:  service,
		recorder: recorder,
	}
}

// createVersionRequest はバージョン作成リクエストのボディ。
type createVersionRequest struct {
	VersionLabel          *string `json:"version_label"`
	Tone                  *string `json:"tone"`
	TargetDurationMinutes *int    `json:"target_duration_minutes"`
	ScriptText            *string `json:"script_text"`
	IsPreferred           *bool   `json:"is_preferred"`
}

// updateVersionRequest はバージョン部分更新リクエストのボディ。
// nilのフィールドは変更されない。
type updateVersionRequest struct {
	VersionLabel          *string `json:"version_label"`
	Tone                  *string `json:"tone"`
	TargetDurationMinutes *int    `json:"target_duration_minutes"`
	ScriptText            *string `json:"script_text"`
	IsPreferred           *bool   `json:"is_preferred"`
}

// versionResponse はスピーチバージョンのAPIレスポンス。
type versionResponse struct {
	ID                    string    `json:"id"`
	SpeechID              string    `json:"speech_id"`
	VersionLabel          string    `json:"version_label"`
	Tone                  string    `json:"tone"`
	TargetDurationMinutes *int      `json:"target_duration_minutes"`
	ScriptText            string    `json:"script_text"`
	IsPreferred           bool      `json:"is_preferred"`
	CreatedAt             time.Time `json:"created_at"`
}

// versionListResponse はバージョン一覧のAPIレスポンス。
type versionListResponse struct {
	Items []versionResponse `json:"items"`
	Total int               `json:"total"`
}

// CreateVersion はバージョン作成を処理する。
// POST /api/speeches/:speechID/versions
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speechID := chi.URLParam(r, "speechID")

	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	rules := validate.RuleSet{
		Strings: []validate.StringRule{
			{Name: "script_text", Value: req.ScriptText, Required: true, MinLen: 1},
			{Name: "version_label", Value: req.VersionLabel},
			{Name: "tone", Value: req.Tone},
		},
		Ints: []validate.IntRule{
			{Name: "target_duration_minutes", Value: req.TargetDurationMinutes,
				Min: minTargetDurationMinutes, Max: maxTargetDurationMinutes},
		},
	}
	if apiErr := rules.Validate(); apiErr != nil {
		h.recordFailure("version_create", apiErr.Code)
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), userID, speechID, version.CreateInput{
		VersionLabel:          strValue(req.VersionLabel),
		Tone:                  strValue(req.Tone),
		TargetDurationMinutes: req.TargetDurationMinutes,
		ScriptText:            strValue(req.ScriptText),
		IsPreferred:           boolValue(req.IsPreferred),
	})
	if err != nil {
		h.handleError(w, "version_create", err)
		return
	}

	h.recordOperation("version_create")
	writeSuccessResponse(w, http.StatusCreated, toVersionResponse(created))
}

// UpdateVersion はバージョンの部分更新を処理する。
// PATCH /api/speeches/:speechID/versions/:versionID
func (h *VersionHandler) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speechID := chi.URLParam(r, "speechID")
	versionID := chi.URLParam(r, "versionID")

	var req updateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	// 部分更新: 指定されたフィールドのみ検証し、最低1フィールドを要求する。
	// 原稿は指定された場合のみ非空を要求する。
	rules := validate.RuleSet{
		Strings: []validate.StringRule{
			{Name: "script_text", Value: req.ScriptText, MinLen: 1},
			{Name: "version_label", Value: req.VersionLabel},
			{Name: "tone", Value: req.Tone},
		},
		Ints: []validate.IntRule{
			{Name: "target_duration_minutes", Value: req.TargetDurationMinutes,
				Min: minTargetDurationMinutes, Max: maxTargetDurationMinutes},
		},
		Bools: []validate.BoolRule{
			{Name: "is_preferred", Value: req.IsPreferred},
		},
		RequireAny: true,
	}
	if apiErr := rules.Validate(); apiErr != nil {
		h.recordFailure("version_update", apiErr.Code)
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, speechID, versionID, version.UpdateInput{
		VersionLabel:          req.VersionLabel,
		Tone:                  req.Tone,
		TargetDurationMinutes: req.TargetDurationMinutes,
		ScriptText:            req.ScriptText,
		IsPreferred:           req.IsPreferred,
	})
	if err != nil {
		h.handleError(w, "version_update", err)
		return
	}

	h.recordOperation("version_update")
	writeSuccessResponse(w, http.StatusOK, toVersionResponse(updated))
}

// DeleteVersion はバージョン削除を処理する。
// DELETE /api/speeches/:speechID/versions/:versionID
func (h *VersionHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speechID := chi.URLParam(r, "speechID")
	versionID := chi.URLParam(r, "versionID")

	if err := h.service.Delete(r.Context(), userID, speechID, versionID); err != nil {
		h.handleError(w, "version_delete", err)
		return
	}

	h.recordOperation("version_delete")
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions はバージョン一覧の取得を処理する。
// GET /api/speeches/:speechID/versions?preferred_only=true
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speechID := chi.URLParam(r, "speechID")
	preferredOnly := r.URL.Query().Get("preferred_only") == "true"

	versions, err := h.service.List(r.Context(), userID, speechID, preferredOnly)
	if err != nil {
		h.handleError(w, "version_list", err)
		return
	}

	items := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, toVersionResponse(v))
	}

	h.recordOperation("version_list")
	writeSuccessResponse(w, http.StatusOK, versionListResponse{
		Items: items,
		Total: len(items),
	})
}

// handleError はサービス層のエラーをレスポンスに変換し、失敗メトリクスを記録する。
func (h *VersionHandler) handleError(w http.ResponseWriter, operation string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		h.recordFailure(operation, apiErr.Code)
	} else {
		h.recordFailure(operation, "INTERNAL_ERROR")
	}
	handleServiceError(w, err)
}

func (h *VersionHandler) recordOperation(operation string) {
	if h.recorder != nil {
		h.recorder.RecordOperation(operation)
	}
}

func (h *VersionHandler) recordFailure(operation, code string) {
	if h.recorder != nil {
		h.recorder.RecordOperationFailure(operation, code)
	}
}

// --- ヘルパー関数 ---

// toVersionResponse はmodel.SpeechVersionからAPIレスポンスに変換する。
func toVersionResponse(v *model.SpeechVersion) versionResponse {
	return versionResponse{
		ID:                    v.ID,
		SpeechID:              v.SpeechID,
		VersionLabel:          v.VersionLabel,
		Tone:                  v.Tone,
		TargetDurationMinutes: v.TargetDurationMinutes,
		ScriptText:            v.ScriptText,
		IsPreferred:           v.IsPreferred,
		CreatedAt:             v.CreatedAt,
	}
}

// boolValue はnilポインタをfalseに変換する。
func boolValue(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

// Package handler はHTTP APIのハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/speechbox/internal/middleware"
	"github.com/hitoshi/speechbox/internal/model"
	"github.com/hitoshi/speechbox/internal/speech"
	"github.com/hitoshi/speechbox/internal/validate"
)

// SpeechServiceInterface はスピーチハンドラーが必要とするサービスインターフェース。
type SpeechServiceInterface interface {
	// Create は新しいスピーチを作成する。
	Create(ctx context.Context, userID string, in speech.CreateInput) (*model.Speech, error)
	// Update はスピーチを部分更新する。
	Update(ctx context.Context, userID, speechID string, in speech.UpdateInput) (*model.Speech, error)
	// List は呼び出しユーザーが所有する全スピーチを返す。
	List(ctx context.Context, userID string) ([]*model.Speech, error)
}

// OperationRecorder はドメイン操作メトリクスの記録に必要なインターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type OperationRecorder interface {
	RecordOperation(operation string)
	RecordOperationFailure(operation string, code string)
}

// SpeechHandler はスピーチ管理のHTTPハンドラー。
type SpeechHandler struct {
	service  SpeechServiceInterface
	recorder OperationRecorder
}

// NewSpeechHandler はSpeechHandlerを生成する。recorderはnil許容。
func NewSpeechHandler(service SpeechServiceInterface, recorder OperationRecorder) *SpeechHandler {
	return &SpeechHandler{
		service:  service,
		recorder: recorder,
	}
}

// createSpeechRequest はスピーチ作成リクエストのボディ。
// 全フィールドをポインタで受け、未指定と空文字列を区別する。
type createSpeechRequest struct {
	Title    *string `json:"title"`
	Occasion *string `json:"occasion"`
	Audience *string `json:"audience"`
	Language *string `json:"language"`
	Notes    *string `json:"notes"`
}

// updateSpeechRequest はスピーチ部分更新リクエストのボディ。
// nilのフィールドは変更されない。
type updateSpeechRequest struct {
	Title    *string `json:"title"`
	Occasion *string `json:"occasion"`
	Audience *string `json:"audience"`
	Language *string `json:"language"`
	Notes    *string `json:"notes"`
}

// speechResponse はスピーチのAPIレスポンス。
type speechResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Occasion  string    `json:"occasion"`
	Audience  string    `json:"audience"`
	Language  string    `json:"language"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// speechListResponse はスピーチ一覧のAPIレスポンス。
type speechListResponse struct {
	Items []speechResponse `json:"items"`
	Total int              `json:"total"`
}

// CreateSpeech はスピーチ作成を処理する。
// POST /api/speeches
func (h *SpeechHandler) CreateSpeech(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createSpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	rules := validate.RuleSet{
		Strings: []validate.StringRule{
			{Name: "title", Value: req.Title, Required: true, MinLen: 1},
			{Name: "occasion", Value: req.Occasion},
			{Name: "audience", Value: req.Audience},
			{Name: "language", Value: req.Language},
			{Name: "notes", Value: req.Notes},
		},
	}
	if apiErr := rules.Validate(); apiErr != nil {
		h.recordFailure("speech_create", apiErr.Code)
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), userID, speech.CreateInput{
		Title:    strValue(req.Title),
		Occasion: strValue(req.Occasion),
		Audience: strValue(req.Audience),
		Language: strValue(req.Language),
		Notes:    strValue(req.Notes),
	})
	if err != nil {
		h.handleError(w, "speech_create", err)
		return
	}

	h.recordOperation("speech_create")
	writeSuccessResponse(w, http.StatusCreated, toSpeechResponse(created))
}

// UpdateSpeech はスピーチの部分更新を処理する。
// PATCH /api/speeches/:speechID
func (h *SpeechHandler) UpdateSpeech(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speechID := chi.URLParam(r, "speechID")

	var req updateSpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	// 部分更新: 指定されたフィールドのみ検証し、最低1フィールドを要求する。
	// タイトルは指定された場合のみ非空を要求する。
	rules := validate.RuleSet{
		Strings: []validate.StringRule{
			{Name: "title", Value: req.Title, MinLen: 1},
			{Name: "occasion", Value: req.Occasion},
			{Name: "audience", Value: req.Audience},
			{Name: "language", Value: req.Language},
			{Name: "notes", Value: req.Notes},
		},
		RequireAny: true,
	}
	if apiErr := rules.Validate(); apiErr != nil {
		h.recordFailure("speech_update", apiErr.Code)
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, speechID, speech.UpdateInput{
		Title:    req.Title,
		Occasion: req.Occasion,
		Audience: req.Audience,
		Language: req.Language,
		Notes:    req.Notes,
	})
	if err != nil {
		h.handleError(w, "speech_update", err)
		return
	}

	h.recordOperation("speech_update")
	writeSuccessResponse(w, http.StatusOK, toSpeechResponse(updated))
}

// ListSpeeches はスピーチ一覧の取得を処理する。
// GET /api/speeches
func (h *SpeechHandler) ListSpeeches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	speeches, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.handleError(w, "speech_list", err)
		return
	}

	items := make([]speechResponse, 0, len(speeches))
	for _, sp := range speeches {
		items = append(items, toSpeechResponse(sp))
	}

	h.recordOperation("speech_list")
	writeSuccessResponse(w, http.StatusOK, speechListResponse{
		Items: items,
		Total: len(items),
	})
}

// handleError はサービス層のエラーをレスポンスに変換し、失敗メトリクスを記録する。
func (h *SpeechHandler) handleError(w http.ResponseWriter, operation string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		h.recordFailure(operation, apiErr.Code)
	} else {
		h.recordFailure(operation, "INTERNAL_ERROR")
	}
	handleServiceError(w, err)
}

func (h *SpeechHandler) recordOperation(operation string) {
	if h.recorder != nil {
		h.recorder.RecordOperation(operation)
	}
}

func (h *SpeechHandler) recordFailure(operation, code string) {
	if h.recorder != nil {
		h.recorder.RecordOperationFailure(operation, code)
	}
}

// --- ヘルパー関数 ---

// toSpeechResponse はmodel.SpeechからAPIレスポンスに変換する。
func toSpeechResponse(sp *model.Speech) speechResponse {
	return speechResponse{
		ID:        sp.ID,
		UserID:    sp.UserID,
		Title:     sp.Title,
		Occasion:  sp.Occasion,
		Audience:  sp.Audience,
		Language:  sp.Language,
		Notes:     sp.Notes,
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
}

// strValue はnilポインタを空文字列に変換する。
func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// successResponse は成功レスポンスの統一フォーマット。
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeSuccessResponse は統一フォーマットで成功レスポンスを書き込む。
func writeSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{
		Success: true,
		Data:    data,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeSpeechNotFound, model.ErrCodeSpeechVersionNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

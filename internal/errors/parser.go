package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Status  int               // HTTP 상태 코드
	Code    string            // 에러 코드 (codes.go 참조)
	Message string            // 사용자에게 보여질 메시지
	Fields  map[string]string // 검증 오류일 때 필드별 메시지
}

// sentinel 에러 → 응답 매핑
var sentinels = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, AuthInvalidCredentials},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, AuthUnauthorized},
	{service.ErrEmailAlreadyExists, http.StatusConflict, AuthEmailAlreadyExists},
	{service.ErrForbidden, http.StatusForbidden, Forbidden},
	{service.ErrCandidateNotFound, http.StatusNotFound, ResourceNotFound},
	{service.ErrRequestNotFound, http.StatusNotFound, ResourceNotFound},
	{service.ErrCompanyNotFound, http.StatusNotFound, ResourceNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound, ResourceNotFound},
	{service.ErrInvalidTransition, http.StatusConflict, RequestInvalidTransition},
	{service.ErrRejectionReason, http.StatusBadRequest, RequestRejectionReason},
	{service.ErrReceiptNotAvailable, http.StatusConflict, RequestReceiptNotReady},
	{service.ErrInvalidPaymentStatus, http.StatusBadRequest, PaymentInvalidStatus},
}

// ParseError 에러를 파싱하여 상태 코드와 응답 코드로 변환
// 서비스 에러는 메시지를 그대로 노출하고, 그 외 에러는 내부 정보를 숨김
func ParseError(err error, action string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Something went wrong, please try again later",
		}
	}

	// 1. 서비스 sentinel 에러
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return ErrorInfo{Status: s.status, Code: s.code, Message: s.err.Error()}
		}
	}

	// 2. 입력 검증 에러
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: verr.Error(),
			Fields:  verr.Fields,
		}
	}

	// 3. 업로드 에러 (메시지 그대로 사용자에게 노출)
	var ferr *service.FileError
	if errors.As(err, &ferr) {
		code := UploadInvalidFileType
		if errors.Is(ferr, service.ErrFileTooLarge) {
			code = UploadFileTooLarge
		}
		return ErrorInfo{Status: http.StatusBadRequest, Code: code, Message: ferr.Message}
	}

	// 4. JSON 바인딩 에러
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: "Request body is not valid JSON",
		}
	}

	// 5. 저장소 에러
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: getNotFoundMessage(action)}
	}
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return ErrorInfo{Status: http.StatusConflict, Code: AuthEmailAlreadyExists, Message: service.ErrEmailAlreadyExists.Error()}
	}

	// 6. 클라이언트가 요청을 취소한 경우
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalServerError,
			Message: "The request was cancelled before it finished",
		}
	}

	// 7. 저장소 연결 에러
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "i/o timeout") {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalDatabaseError,
			Message: "Storage is unavailable, please try again later",
		}
	}

	// 8. 기본 내부 서버 오류
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(action),
	}
}

// getNotFoundMessage action에 따른 Not Found 메시지
func getNotFoundMessage(action string) string {
	actionLower := strings.ToLower(action)

	switch {
	case strings.Contains(actionLower, "candidate"):
		return service.ErrCandidateNotFound.Error()
	case strings.Contains(actionLower, "request"):
		return service.ErrRequestNotFound.Error()
	case strings.Contains(actionLower, "company"):
		return service.ErrCompanyNotFound.Error()
	}
	return "Resource not found"
}

// getDefaultErrorMessage action에 따른 기본 에러 메시지
func getDefaultErrorMessage(action string) string {
	actionLower := strings.ToLower(action)

	switch {
	case strings.Contains(actionLower, "create"):
		return "Failed to create, please try again later"
	case strings.Contains(actionLower, "update"):
		return "Failed to update, please try again later"
	case strings.Contains(actionLower, "export"):
		return "Failed to export, please try again later"
	}
	return "Something went wrong, please try again later"
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (controller 헬퍼)
func ParseAndRespond(c *gin.Context, err error, action string) {
	info := ParseError(err, action)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
		Fields:  info.Fields,
	})
}

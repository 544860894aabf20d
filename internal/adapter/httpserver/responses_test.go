package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantType   string
		wantStatus int
	}{
		{"invalid argument", fmt.Errorf("%w: prompt", domain.ErrInvalidArgument), http.StatusBadRequest, "مدخلات غير صحيحة", 0},
		{"invalid key index", domain.ErrInvalidKeyIndex, http.StatusBadRequest, "مدخلات غير صحيحة", 0},
		{"unsupported model", domain.ErrUnsupportedModel, http.StatusBadRequest, "نموذج غير متاح", 0},
		{"upstream 404", &domain.ExhaustedError{Attempts: 1, LastStatus: 404, Err: &domain.UpstreamHTTPError{Status: 404}}, http.StatusInternalServerError, "نموذج غير متاح", 404},
		{"auth", &domain.ExhaustedError{Attempts: 2, LastStatus: 401}, http.StatusInternalServerError, "مشكلة المصادقة", 401},
		{"quota", &domain.UpstreamHTTPError{Status: 429}, http.StatusInternalServerError, "تجاوز الحصة", 429},
		{"bad request", &domain.UpstreamHTTPError{Status: 400}, http.StatusInternalServerError, "خطأ في البيانات", 400},
		{"overall timeout", domain.ErrOverallTimeout, http.StatusRequestTimeout, "مهلة زمنية", 0},
		{"attempt timeout", &domain.ExhaustedError{Attempts: 1, Err: context.DeadlineExceeded}, http.StatusInternalServerError, "مهلة الاتصال", 0},
		{"network", &domain.ExhaustedError{Attempts: 2, Err: domain.ErrNetwork}, http.StatusInternalServerError, "مشكلة الشبكة", 0},
		{"all disabled", domain.ErrAllKeysDisabled, http.StatusInternalServerError, "المفاتيح غير متاحة", 0},
		{"no compatible", domain.ErrNoCompatibleKey, http.StatusInternalServerError, "نموذج غير متاح", 0},
		{"upstream 503", &domain.UpstreamHTTPError{Status: 503}, http.StatusInternalServerError, "غير معروف", 503},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "غير معروف", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := translateError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.NotEmpty(t, body.Message)
			assert.NotEmpty(t, body.Suggestion)
		})
	}
}

func TestSuggestionForStatus(t *testing.T) {
	assert.Equal(t, "الخدمة غير متوفرة مؤقتاً، حاول لاحقاً", suggestionForStatus(503))
	assert.Equal(t, "حاول مرة أخرى أو تواصل مع الدعم الفني", suggestionForStatus(418))
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, validateStruct(researchRequest{Prompt: "x", Type: "quiz", Provider: "deepseek"}))
	assert.ErrorIs(t, validateStruct(researchRequest{}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, validateStruct(researchRequest{Prompt: "x", Type: "essay"}), domain.ErrInvalidArgument)
	assert.ErrorIs(t, validateStruct(switchKeyRequest{}), domain.ErrInvalidArgument)
	zero := 0
	assert.NoError(t, validateStruct(switchKeyRequest{KeyIndex: &zero}))
}

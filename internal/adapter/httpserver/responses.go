// Package httpserver contains the HTTP handlers and middleware of the
// research gateway.
package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Suggestion string `json:"suggestion"`
	Status     int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var statusSuggestions = map[int]string{
	400: "تحقق من صحة عنوان البحث والمدخلات",
	401: "تحقق من مفتاح API في إعدادات الخادم",
	403: "تأكد من تفعيل الخدمة للمفتاح المستخدم أو من عدم تجاوز الحصة اليومية",
	429: "انتظر دقيقة واحدة قبل المحاولة مرة أخرى",
	500: "خطأ مؤقت في الخادم، حاول مرة أخرى بعد قليل",
	503: "الخدمة غير متوفرة مؤقتاً، حاول لاحقاً",
}

func suggestionForStatus(status int) string {
	if s, ok := statusSuggestions[status]; ok {
		return s
	}
	return "حاول مرة أخرى أو تواصل مع الدعم الفني"
}

// translateError maps a failure to the HTTP status and the user-facing
// Arabic error body. Raw upstream bodies are never exposed.
func translateError(err error) (int, apiError) {
	upstream := domain.UpstreamStatus(err)
	e := apiError{Status: upstream}
	code := http.StatusInternalServerError

	switch domain.Kind(err) {
	case domain.KindInvalidArgument:
		code = http.StatusBadRequest
		e.Message = "البيانات المرسلة غير صحيحة. تحقق من المدخلات."
		e.Type = "مدخلات غير صحيحة"
		e.Suggestion = suggestionForStatus(400)
	case domain.KindInvalidKeyIndex:
		code = http.StatusBadRequest
		e.Message = "رقم مفتاح غير صحيح"
		e.Type = "مدخلات غير صحيحة"
		e.Suggestion = "راجع قائمة المفاتيح في /status واستخدم رقماً يبدأ من الصفر"
	case domain.KindAuth:
		e.Message = "خطأ في مصادقة مفتاح API."
		e.Type = "مشكلة المصادقة"
		e.Suggestion = suggestionForStatus(upstream)
	case domain.KindQuota:
		e.Message = "تم تجاوز الحد المسموح من الطلبات مؤقتاً."
		e.Type = "تجاوز الحصة"
		e.Suggestion = "انتظر 30 ثانية قبل المحاولة مرة أخرى"
	case domain.KindBadRequest:
		e.Message = "خطأ في البيانات المرسلة أو النموذج المستخدم."
		e.Type = "خطأ في البيانات"
		e.Suggestion = "تحقق من صحة المدخلات وحاول مرة أخرى"
	case domain.KindModel:
		e.Message = "النموذج المحدد غير متاح حالياً أو غير مدعوم."
		e.Type = "نموذج غير متاح"
		e.Suggestion = "استخدم نموذج Gemini 2.0 Flash للحصول على أفضل النتائج"
		if upstream == 0 {
			code = http.StatusBadRequest
		}
	case domain.KindKeysUnavailable:
		if errors.Is(err, domain.ErrAllKeysDisabled) {
			e.Message = "جميع مفاتيح API معطلة مؤقتاً بسبب كثرة الأخطاء."
			e.Type = "المفاتيح غير متاحة"
			e.Suggestion = "انتظر دقيقة واحدة أو أعد تعيين النظام عبر /reset"
		} else {
			e.Message = "لا يوجد مفتاح متوافق مع النموذج المحدد."
			e.Type = "نموذج غير متاح"
			e.Suggestion = "استخدم نموذج Gemini 2.0 Flash للحصول على أفضل النتائج"
		}
	case domain.KindTimeout:
		if errors.Is(err, domain.ErrOverallTimeout) {
			code = http.StatusRequestTimeout
			e.Message = "انتهت المهلة الزمنية للطلب. حاول مرة أخرى."
			e.Type = "مهلة زمنية"
			e.Suggestion = "جرب تقليل حجم النص أو استخدم نموذج أسرع"
		} else {
			e.Message = "انتهت مهلة الاتصال مع الخادم."
			e.Type = "مهلة الاتصال"
			e.Suggestion = "تحقق من اتصال الإنترنت وحاول مرة أخرى"
		}
	case domain.KindNetwork:
		e.Message = "مشكلة في الاتصال بالإنترنت."
		e.Type = "مشكلة الشبكة"
		e.Suggestion = "تحقق من اتصال الإنترنت"
	default:
		e.Message = "حدث خطأ غير متوقع أثناء إعداد البحث."
		e.Type = "غير معروف"
		if upstream != 0 {
			e.Suggestion = suggestionForStatus(upstream)
		} else {
			e.Suggestion = "حاول مرة أخرى خلال دقيقة واحدة"
		}
	}
	return code, e
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := translateError(err)
	LoggerFrom(r).Warn("request failed",
		slog.Int("status", code),
		slog.String("kind", string(domain.Kind(err))),
		slog.Any("error", err))
	writeJSON(w, code, errorEnvelope{Error: body})
}

package ai

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

const pageBreakMarker = "[صفحة جديدة]"

var (
	reExcessNewlines = regexp.MustCompile(`\n{3,}`)

	reAcademicHeading = regexp.MustCompile(`(?m)^(المبحث|المطلب|الفرع|الخاتمة|المقدمة)`)
	reFootnoteMarker  = regexp.MustCompile(`\(\d+\)`)
	reLaterSection    = regexp.MustCompile(`(المبحث الثاني|المبحث الثالث|المبحث الرابع)`)

	reSummaryEnum  = regexp.MustCompile(`(?m)^(\d+\.|[أابجد]\.)`)
	reSummaryLabel = regexp.MustCompile(`(?m)^(التعريف:|المفهوم:|النقطة الأساسية:)`)

	rePrepEnum  = regexp.MustCompile(`(?m)^(\d+\.\s)`)
	rePrepLabel = regexp.MustCompile(`(?m)^(المراجع:|الأسئلة:|الخطة:)`)
)

// FormatResponse shapes generated text for the requested output type.
// Quiz text is returned untouched; every other type is trimmed.
func FormatResponse(text string, t domain.OutputType) string {
	switch t {
	case domain.OutputQuiz:
		return text
	case domain.OutputAcademic:
		text = reAcademicHeading.ReplaceAllString(text, "\n\n$1")
		text = reFootnoteMarker.ReplaceAllString(text, "${0}\n")
		text = reLaterSection.ReplaceAllString(text, "\n"+pageBreakMarker+"\n\n$1")
		text = reExcessNewlines.ReplaceAllString(text, "\n\n")
	case domain.OutputSummary:
		text = reSummaryEnum.ReplaceAllString(text, "\n$1")
		text = reSummaryLabel.ReplaceAllString(text, "\n\n**$1**")
	case domain.OutputPreparation:
		text = rePrepEnum.ReplaceAllString(text, "\n$1")
		text = rePrepLabel.ReplaceAllString(text, "\n\n**$1**")
	default:
		text = reExcessNewlines.ReplaceAllString(text, "\n\n")
	}
	return strings.TrimSpace(text)
}

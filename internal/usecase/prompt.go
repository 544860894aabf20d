package usecase

import (
	"strings"

	"github.com/fairyhunter13/ai-legal-research/internal/domain"
)

const (
	gemini2Prefix = "باستخدام أحدث معايير البحث القانوني والأكاديمي، "
	geminiPrefix  = "كخبير قانوني أكاديمي متمرس في التحليل العميق والدقيق، "
)

const academicInstructions = `

تعليمات مهمة لضمان جودة البحث:

1. **الهيكل الأكاديمي:**
   - اتبع التسلسل الهرمي: مبحث → مطلب → فرع
   - رقم كل عنصر بوضوح
   - استخدم العناوين الواضحة والمحددة

2. **المحتوى العلمي:**
   - اكتب مقدمة شاملة تتضمن الإشكالية وأهمية الموضوع
   - استخدم التعريفات الدقيقة للمصطلحات
   - اذكر آراء متنوعة للفقهاء والباحثين
   - قدم أمثلة عملية وتطبيقية
   - اربط بين النظرية والتطبيق

3. **المراجع والهوامش:**
   - اكتب هوامش مرقمة في نهاية كل فقرة مهمة
   - استخدم تنسيق المراجع الأكاديمي: اسم المؤلف، عنوان الكتاب، دار النشر، مكان النشر، سنة النشر، رقم الصفحة
   - نوع المراجع (كتب، رسائل، مقالات، قوانين، مواقع موثوقة)
   - استخدم مراجع حديثة (آخر 10-15 سنة)

4. **الأسلوب الأكاديمي:**
   - استخدم اللغة العربية الفصيحة
   - تجنب الضمائر الشخصية
   - استخدم الأسلوب الموضوعي والمنطقي
   - اكتب فقرات متوازنة ومترابطة

5. **الخاتمة والتوصيات:**
   - لخص أهم النتائج
   - قدم توصيات عملية
   - اقترح مجالات للبحث المستقبلي

6. **التنسيق:**
   - ضع رقم الصفحة في أسفل كل صفحة
   - استخدم التباعد المناسب بين الأسطر
   - ميز العناوين الرئيسية والفرعية

الرجاء كتابة بحث شامل ومفصل يلتزم بهذه المعايير الأكاديمية.`

// EnhancePrompt prepares the user prompt for the target model. Academic
// requests get the structured-research instruction block instead of the
// model-family prefix.
func EnhancePrompt(prompt string, t domain.OutputType, model string) string {
	if t == domain.OutputAcademic {
		return prompt + academicInstructions
	}
	switch {
	case strings.Contains(model, "gemini-2.0"):
		return gemini2Prefix + prompt
	case strings.Contains(model, "gemini"):
		return geminiPrefix + prompt
	default:
		return prompt
	}
}

package stub

import (
	"context"
	"strings"
)

var criticalExplanations = map[string]string{
	"es":      "Mamá, Papá, tenemos una factura escolar que vence pronto, pero encontré un plan para extender la fecha límite para que podamos manejarla de manera segura.",
	"hi":      "माँ, पापा, हमारे पास जल्द ही एक स्कूल बिल है, लेकिन मुझे समय सीमा बढ़ाने का एक तरीका मिला है ताकि हम इसे सुरक्षित रूप से संभाल सकें।",
	"zh-Hans": "妈妈，爸爸，我们有一张学校账单很快就要到期了，但我找到了一个延长截止日期的计划，这样我们就能安全地处理它。",
	"ar":      "أمي، أبي، لدينا فاتورة مدرسية مستحقة قريبًا، لكنني وجدت خطة لتمديد الموعد النهائي حتى نتمكن من التعامل معها بأمان.",
}

var calmExplanations = map[string]string{
	"es":      "Tenemos una factura escolar, pero tenemos tiempo y opciones para manejarla.",
	"hi":      "हमारे पास एक स्कूल बिल है, लेकिन हमारे पास समय और विकल्प हैं।",
	"zh-Hans": "我们有一张学校账单，但我们有时间来处理它。",
	"ar":      "لدينا فاتورة مدرسية، لكن لدينا الوقت للتعامل معها.",
}

// Translator returns a canned family-facing line per language. The urgent
// variant is picked when the source text mentions a critical rating.
type Translator struct{}

func NewTranslator() *Translator {
	return &Translator{}
}

func (t *Translator) Translate(_ context.Context, text, targetLanguage string) (string, error) {
	table := calmExplanations
	if strings.Contains(text, "CRITICAL") || strings.Contains(text, "Critical") {
		table = criticalExplanations
	}
	if translated, ok := table[targetLanguage]; ok {
		return translated, nil
	}
	return table["es"], nil
}

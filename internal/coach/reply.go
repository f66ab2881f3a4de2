package coach

import "github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"

// Status tags the outcome of a coaching query.
type Status int

const (
	StatusOK Status = iota
	StatusNoResponse
	StatusNotConfigured
	StatusFailed
	StatusEmptyQuery
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoResponse:
		return "no_response"
	case StatusNotConfigured:
		return "not_configured"
	case StatusFailed:
		return "failed"
	case StatusEmptyQuery:
		return "empty_query"
	}
	return "unknown"
}

// Reply is the result of a coaching query. Text is set only for StatusOK;
// Err only for StatusFailed.
type Reply struct {
	Status Status
	Text   string
	Err    error
}

var fixedMessages = map[Status]script.Text{
	StatusNoResponse: {
		script.LocaleEN: "No response.",
		script.LocaleVN: "Không có phản hồi.",
	},
	StatusNotConfigured: {
		script.LocaleEN: "API Key not configured.",
		script.LocaleVN: "Chưa cấu hình API Key.",
	},
	StatusFailed: {
		script.LocaleEN: "Error connecting to AI assistant.",
		script.LocaleVN: "Lỗi kết nối với trợ lý AI.",
	},
	StatusEmptyQuery: {
		script.LocaleEN: "Type a question first.",
		script.LocaleVN: "Hãy nhập câu hỏi trước.",
	},
}

// Message returns the text to show the user in lang.
func (r Reply) Message(lang script.Locale) string {
	if r.Status == StatusOK {
		return r.Text
	}
	return fixedMessages[r.Status].Get(lang)
}

// WelcomeMessage is the coach panel's first line.
func WelcomeMessage(lang script.Locale) string {
	return script.Text{
		script.LocaleEN: "I'm your sales coach. Ask me about objections or what to say next!",
		script.LocaleVN: "Tôi là trợ lý bán hàng của bạn. Hãy hỏi tôi về cách xử lý từ chối hoặc câu thoại tiếp theo!",
	}.Get(lang)
}

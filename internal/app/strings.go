package app

import "github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"

// labels holds every localized string the TUI draws.
var labels = map[string]script.Text{
	"app.title":         {script.LocaleEN: "TELEFLOW", script.LocaleVN: "TELEFLOW"},
	"call.timer":        {script.LocaleEN: "Call", script.LocaleVN: "Cuộc gọi"},
	"script.title":      {script.LocaleEN: "SCRIPT", script.LocaleVN: "KỊCH BẢN"},
	"script.target":     {script.LocaleEN: "Target", script.LocaleVN: "Mục tiêu"},
	"script.noTarget":   {script.LocaleEN: "no limit", script.LocaleVN: "không giới hạn"},
	"script.prev":       {script.LocaleEN: "Previous", script.LocaleVN: "Trước"},
	"script.next":       {script.LocaleEN: "Next step", script.LocaleVN: "Bước tiếp"},
	"script.finish":     {script.LocaleEN: "Finish", script.LocaleVN: "Hoàn tất"},
	"script.stageOf":    {script.LocaleEN: "Stage %d of %d", script.LocaleVN: "Bước %d / %d"},
	"notes.title":       {script.LocaleEN: "NOTES", script.LocaleVN: "GHI CHÚ"},
	"notes.placeholder": {script.LocaleEN: "Type call notes here...", script.LocaleVN: "Nhập ghi chú cuộc gọi..."},
	"notes.saving":      {script.LocaleEN: "Saving...", script.LocaleVN: "Đang lưu..."},
	"notes.saved":       {script.LocaleEN: "Saved", script.LocaleVN: "Đã lưu"},
	"notes.unsaved":     {script.LocaleEN: "Unsaved", script.LocaleVN: "Chưa lưu"},
	"notes.failed":      {script.LocaleEN: "Save failed", script.LocaleVN: "Lưu thất bại"},
	"notes.loadFailed":  {script.LocaleEN: "Could not load the saved draft", script.LocaleVN: "Không tải được bản nháp đã lưu"},
	"coach.title":       {script.LocaleEN: "AI COACH", script.LocaleVN: "TRỢ LÝ AI"},
	"coach.placeholder": {script.LocaleEN: "Ask about objections...", script.LocaleVN: "Hỏi về cách xử lý từ chối..."},
	"coach.thinking":    {script.LocaleEN: "Thinking...", script.LocaleVN: "Đang suy nghĩ..."},
	"coach.you":         {script.LocaleEN: "You", script.LocaleVN: "Bạn"},
	"coach.coach":       {script.LocaleEN: "Coach", script.LocaleVN: "Trợ lý"},
	"coach.off":         {script.LocaleEN: "not configured", script.LocaleVN: "chưa cấu hình"},
	"map.title":         {script.LocaleEN: "CALL MAP", script.LocaleVN: "BẢN ĐỒ CUỘC GỌI"},
	"map.hint":          {script.LocaleEN: "Press a number or Enter to jump to a stage", script.LocaleVN: "Nhấn số hoặc Enter để chuyển tới bước"},
	"history.title":     {script.LocaleEN: "CALL HISTORY", script.LocaleVN: "LỊCH SỬ CUỘC GỌI"},
	"history.empty":     {script.LocaleEN: "No archived calls yet", script.LocaleVN: "Chưa có cuộc gọi nào được lưu"},
	"history.loading":   {script.LocaleEN: "Loading...", script.LocaleVN: "Đang tải..."},
	"history.noNotes":   {script.LocaleEN: "(no notes)", script.LocaleVN: "(không có ghi chú)"},
	"history.stages":    {script.LocaleEN: "%d stages", script.LocaleVN: "%d bước"},
	"confirm.newCall":   {script.LocaleEN: "Start a new call? Current notes and progress will be archived.", script.LocaleVN: "Bắt đầu cuộc gọi mới? Ghi chú và tiến độ hiện tại sẽ được lưu trữ."},
	"confirm.keys":      {script.LocaleEN: "y confirm · any other key cancels", script.LocaleVN: "y xác nhận · phím khác để hủy"},
	"newCall.running":   {script.LocaleEN: "Archiving call...", script.LocaleVN: "Đang lưu cuộc gọi..."},
	"newCall.done":      {script.LocaleEN: "Call archived. New call started.", script.LocaleVN: "Đã lưu cuộc gọi. Bắt đầu cuộc gọi mới."},
	"newCall.failed":    {script.LocaleEN: "Could not archive call", script.LocaleVN: "Không thể lưu cuộc gọi"},
	"error.prefix":      {script.LocaleEN: "Error: ", script.LocaleVN: "Lỗi: "},

	"key.next":     {script.LocaleEN: "next", script.LocaleVN: "tiếp"},
	"key.prev":     {script.LocaleEN: "prev", script.LocaleVN: "lùi"},
	"key.move":     {script.LocaleEN: "move", script.LocaleVN: "di chuyển"},
	"key.toggle":   {script.LocaleEN: "check", script.LocaleVN: "đánh dấu"},
	"key.focus":    {script.LocaleEN: "panel", script.LocaleVN: "khung"},
	"key.back":     {script.LocaleEN: "back", script.LocaleVN: "quay lại"},
	"key.map":      {script.LocaleEN: "map", script.LocaleVN: "bản đồ"},
	"key.history":  {script.LocaleEN: "history", script.LocaleVN: "lịch sử"},
	"key.newCall":  {script.LocaleEN: "new call", script.LocaleVN: "cuộc gọi mới"},
	"key.language": {script.LocaleEN: "Tiếng Việt", script.LocaleVN: "English"},
	"key.send":     {script.LocaleEN: "send", script.LocaleVN: "gửi"},
	"key.jump":     {script.LocaleEN: "jump", script.LocaleVN: "chuyển"},
	"key.help":     {script.LocaleEN: "help", script.LocaleVN: "trợ giúp"},
	"key.quit":     {script.LocaleEN: "quit", script.LocaleVN: "thoát"},
}

// tr returns the label for key in lang, or key itself if it is unknown.
func tr(lang script.Locale, key string) string {
	if t, ok := labels[key]; ok {
		return t.Get(lang)
	}
	return key
}

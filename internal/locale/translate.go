package locale

// Pick returns the text matching the request language, defaulting to English.
func Pick(language, english, chinese string) string {
	if NormalizeLanguage(language) == LanguageChinese {
		if chinese != "" {
			return chinese
		}
		return english
	}
	if english != "" {
		return english
	}
	return chinese
}

type message struct {
	en string
	zh string
}

var messages = map[string]message{
	"validation_error":        {"Validation failed", "请求参数校验失败"},
	"invalid_body":            {"Request body is invalid", "请求体格式错误"},
	"forbidden":               {"You do not have permission to perform this action", "没有执行该操作的权限"},
	"not_authenticated":       {"Authentication credentials were not provided", "尚未登录"},
	"internal_error":          {"Internal server error", "服务器内部错误"},
	"conflict":                {"The resource was modified concurrently, please retry", "资源已被并发修改，请重试"},
	"not_found":               {"Not found", "资源不存在"},
	"page_not_found":          {"Page not found", "页面不存在"},
	"content_not_found":       {"Content not found", "内容不存在"},
	"content_image_not_found": {"Content image not found", "内容图片不存在"},
	"content_text_not_found":  {"Content text not found", "内容文本不存在"},
	"tag_not_found":           {"Tag not found", "标签不存在"},
	"news_not_found":          {"News not found", "新闻不存在"},
	"category_not_found":      {"News category not found", "新闻分类不存在"},
	"video_not_found":         {"Video not found", "视频不存在"},
	"user_not_found":          {"User not found", "用户不存在"},
	"duplicate_slug":          {"Duplicate slug", "slug 已存在"},
	"invalid_credentials":     {"Invalid username or password", "用户名或密码错误"},
	"file_required":           {"A file is required", "请选择要上传的文件"},
	"unsupported_file":        {"Unsupported file type", "不支持的文件类型"},
	"upload_failed":           {"Upload failed", "上传失败"},
	"logged_out":              {"Logged out", "已退出登录"},
}

// Message returns the catalogued text for key, or key itself when unknown.
func Message(language, key string) string {
	msg, ok := messages[key]
	if !ok {
		return key
	}
	return Pick(language, msg.en, msg.zh)
}

package logger

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Sanitizer 負責過濾日誌中的敏感資訊
//
// 規則說明：
//   - 敏感 key（password、token 等）的 value 整個遮罩
//   - 其他 key 的字串與 error value 只套用 inline 規則
//     （Bot API URL 中的 bot<token>、query string 中的 token=/password=）
//   - 範例：logger.Info("msg", "url", "https://api.telegram.org/bot123:abc/sendPhoto")
//     會輸出 https://api.telegram.org/bot***/sendPhoto
//   - 路徑與 email 規則只作用在 message 本身
type Sanitizer struct {
	mu       sync.RWMutex
	patterns []SanitizeRule
	inline   []SanitizeRule
}

// SanitizeRule 單一過濾規則
type SanitizeRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewSanitizer 建立預設 sanitizer
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		patterns: defaultSanitizeRules(),
		inline:   inlineSanitizeRules(),
	}
}

// defaultSanitizeRules 回傳預設過濾規則
func defaultSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		// 密碼相關
		{regexp.MustCompile(`(?i)password=\S+`), "password=***"},
		{regexp.MustCompile(`(?i)passwd=\S+`), "passwd=***"},
		{regexp.MustCompile(`(?i)pwd=\S+`), "pwd=***"},

		// Token 相關
		botTokenRule,
		{regexp.MustCompile(`(?i)token=\S+`), "token=***"},
		{regexp.MustCompile(`(?i)bearer\s+\S+`), "bearer ***"},
		{regexp.MustCompile(`(?i)api[_-]?key=\S+`), "api_key=***"},

		// Windows 使用者路徑 (支援所有磁碟機與 UNC，不區分大小寫)
		{regexp.MustCompile(`(?i)[A-Z]:\\Users\\[^\\]+`), "***:\\Users\\***"},
		{regexp.MustCompile(`(?i)\\\\[^\\]+\\[^\\]+\\Users\\[^\\]+`), "\\\\***\\***\\Users\\***"},

		// Unix 家目錄
		{regexp.MustCompile(`/home/[^/]+`), "/home/***"},
		{regexp.MustCompile(`/Users/[^/]+`), "/Users/***"},

		// Email 部分遮蔽
		{regexp.MustCompile(`([a-zA-Z0-9._%+-]{1,3})[a-zA-Z0-9._%+-]*@`), "$1***@"},
	}
}

// botTokenRule 遮蔽 Telegram Bot API 路徑中的 bot token
var botTokenRule = SanitizeRule{regexp.MustCompile(`/bot\d+:[A-Za-z0-9_-]+`), "/bot***"}

// inlineSanitizeRules 套用在非敏感 key 的 value
func inlineSanitizeRules() []SanitizeRule {
	return []SanitizeRule{
		botTokenRule,
		{regexp.MustCompile(`(?i)token=[^&\s]+`), "token=***"},
		{regexp.MustCompile(`(?i)password=[^&\s]+`), "password=***"},
	}
}

// Sanitize sanitizes a string by applying all patterns
func (s *Sanitizer) Sanitize(input string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := input
	for _, rule := range s.patterns {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// SanitizeArgs sanitizes logging arguments
func (s *Sanitizer) SanitizeArgs(args []any) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	// Process key-value pairs
	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}

		// Check if key is sensitive
		if s.isSensitiveKey(key) {
			// Mask the value
			switch v := result[i+1].(type) {
			case string:
				result[i+1] = s.maskValue(v)
			case error:
				result[i+1] = s.maskValue(v.Error())
			}
			continue
		}

		switch v := result[i+1].(type) {
		case string:
			result[i+1] = s.applyInline(v)
		case error:
			if masked := s.applyInline(v.Error()); masked != v.Error() {
				result[i+1] = masked
			}
		}
	}

	return result
}

// applyInline 套用 inline 規則（呼叫端需持有讀鎖）
func (s *Sanitizer) applyInline(value string) string {
	for _, rule := range s.inline {
		value = rule.Pattern.ReplaceAllString(value, rule.Replacement)
	}
	return value
}

// isSensitiveKey 判斷鍵名是否為敏感鍵
func (s *Sanitizer) isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"token", "secret", "api_key", "apikey",
		"credential", "auth",
	}

	for _, sk := range sensitiveKeys {
		if strings.Contains(lowerKey, sk) {
			return true
		}
	}
	return false
}

// maskValue 遮蔽值（保留前後各1字元）
func (s *Sanitizer) maskValue(value string) string {
	if len(value) <= 2 {
		return "***"
	}
	if len(value) <= 8 {
		return fmt.Sprintf("%s***", string(value[0]))
	}
	return fmt.Sprintf("%s***%s", string(value[0]), string(value[len(value)-1]))
}

// AddRule 新增自訂過濾規則
func (s *Sanitizer) AddRule(pattern string, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	s.patterns = append(s.patterns, SanitizeRule{
		Pattern:     re,
		Replacement: replacement,
	})
	return nil
}

package content

import "strings"

var whiteNoiseKeywords = []string{
	"白噪音", "白噪声", "white noise", "雨声", "海浪声", "森林声", "风声", "鸟鸣",
	"环境音", "自然音", "放松音乐", "助眠音乐", "大自然", "流水声", "虫鸣", "雷声", "火焰声",
}

// IsWhiteNoise reports whether a play request asks for ambient sound rather
// than a song.
func IsWhiteNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range whiteNoiseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

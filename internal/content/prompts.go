package content

import (
	"fmt"
	"math/rand/v2"
)

const (
	defaultWhiteNoiseTitle = "舒缓白噪音"
	defaultStoryTitle      = "精彩故事"
)

var musicPrompts = []string{
	"正在为您播放，《%s》",
	"请欣赏歌曲，《%s》",
	"即将为您播放，《%s》",
	"现在为您带来，《%s》",
	"让我们一起聆听，《%s》",
	"接下来请欣赏，《%s》",
	"此刻为您献上，《%s》",
}

var whiteNoisePrompts = []string{
	"正在为您播放白噪音，%s",
	"请享受放松的环境音，%s",
	"即将为您播放，%s",
	"为您带来舒缓的，%s",
	"让我们聆听，%s",
	"接下来请欣赏，%s",
	"为您献上，%s",
}

func MusicPrompt(name string) string {
	return pick(musicPrompts, name)
}

func WhiteNoisePrompt(title string) string {
	if title == "" {
		title = defaultWhiteNoiseTitle
	}
	return pick(whiteNoisePrompts, title)
}

func StoryPrompt(title string) string {
	if title == "" {
		title = defaultStoryTitle
	}
	return "正在为您播放，" + title
}

func pick(templates []string, arg string) string {
	return fmt.Sprintf(templates[rand.IntN(len(templates))], arg)
}

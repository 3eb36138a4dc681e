package domain

// MaxComicPanels は1回の連環画生成で扱えるコマ数の上限です。
const MaxComicPanels = 10

// ComicStripRequest は連環画生成の入力です。
type ComicStripRequest struct {
	Story          string `validate:"notblank"`
	Style          Style
	NumberOfImages int `validate:"min=1,max=10"`
}

// ComicStrip は連環画の生成結果です。Images と PanelPrompts は同じ長さでシーン順に並びます。
type ComicStrip struct {
	Images       []GeneratedImage `json:"imageUrls"`
	PanelPrompts []string         `json:"panelPrompts"`
}

// PanelEditRequest は生成済みパネルの修正指示です。
type PanelEditRequest struct {
	Panel  GeneratedImage
	Prompt string `validate:"notblank"`
}

// VideoScriptRequest は各パネルに対応する動画演出文の生成入力です。
type VideoScriptRequest struct {
	Story  string
	Images []GeneratedImage `validate:"min=1"`
}

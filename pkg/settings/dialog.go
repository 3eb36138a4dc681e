package settings

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
)

const (
	msgKeyRequired    = "请先填写有效的 API Key。"
	msgNoImageModels  = "未从接口获取到可用的图像模型，将使用默认模型。"
	msgLoadModelsFail = "加载模型列表失败。"
	keyEscape         = "Escape"
)

// State は設定ダイアログの状態です。
type State int

const (
	StateClosed State = iota
	StateEditing
	StateSaved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSaved:
		return "saved"
	case StateCancelled:
		return "cancelled"
	default:
		return "closed"
	}
}

// MarshalText は JSON で状態名を出力するために実装しています。
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Current はダイアログを開く時点の有効な設定です。
// APIKey が nil の場合は環境変数のキーが使われていることを表し、入力欄は空になります。
type Current struct {
	APIKey  *string
	BaseURL string
	Model   string
}

// SaveFunc は保存時に呼ばれる外部ストアへの書き込みです。
type SaveFunc func(st Stored) error

// ModelLister は API キーと Base URL から画像モデル一覧を取得します。
type ModelLister func(ctx context.Context, creds domain.Credentials) ([]string, error)

// View はダイアログの表示用スナップショットです。
type View struct {
	State      State    `json:"state"`
	APIKey     string   `json:"-"`
	APIKeySet  bool     `json:"apiKeySet"`
	BaseURL    string   `json:"baseUrl"`
	Model      string   `json:"model"`
	Candidates []string `json:"candidates"`
	Error      string   `json:"error,omitempty"`
	Loading    bool     `json:"loading"`
	CanSave    bool     `json:"canSave"`
	CanRefresh bool     `json:"canRefresh"`
}

// Dialog は API キー・Base URL・モデルを編集する設定ダイアログの状態機械です。
// モデル一覧の取得中もスナップショットを読めるよう、状態は mutex で保護します。
type Dialog struct {
	mu         sync.Mutex
	state      State
	apiKey     string
	baseURL    string
	model      string
	candidates []string
	errMsg     string
	loading    bool
	// generation は開閉のたびに進み、古い取得結果を捨てるために使います。
	generation uint64

	provider     domain.Provider
	defaultModel string
	lister       ModelLister
	onSave       SaveFunc
	logger       *zap.Logger
}

// DialogOption は Dialog の設定を変更します。
type DialogOption func(*Dialog)

// WithDefaultModel は未選択時に使うモデルを指定します。
func WithDefaultModel(model string) DialogOption {
	return func(d *Dialog) {
		if model = strings.TrimSpace(model); model != "" {
			d.defaultModel = model
		}
	}
}

// WithProvider はモデル一覧取得に使うプロバイダーを指定します。
func WithProvider(p domain.Provider) DialogOption {
	return func(d *Dialog) {
		d.provider = p.Normalize()
	}
}

// WithLogger はロガーを差し替えます。
func WithLogger(logger *zap.Logger) DialogOption {
	return func(d *Dialog) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDialog は閉じた状態のダイアログを作成します。
func NewDialog(lister ModelLister, onSave SaveFunc, opts ...DialogOption) *Dialog {
	d := &Dialog{
		state:        StateClosed,
		provider:     domain.ProviderOpenAI,
		defaultModel: adapters.DefaultOpenAIImageModel,
		lister:       lister,
		onSave:       onSave,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open は現在の設定で入力欄を初期化して編集状態にします。保存後や取消後でも開き直せます。
func (d *Dialog) Open(cur Current) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.generation++
	d.state = StateEditing
	d.apiKey = ""
	if cur.APIKey != nil {
		d.apiKey = *cur.APIKey
	}
	d.baseURL = cur.BaseURL
	d.model = cur.Model
	if d.model == "" {
		d.model = d.defaultModel
	}
	d.candidates = []string{d.model}
	d.errMsg = ""
	d.loading = false
}

// SetAPIKey は編集中のみ API キー欄を更新します。
func (d *Dialog) SetAPIKey(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateEditing {
		return false
	}
	d.apiKey = key
	return true
}

// SetBaseURL は編集中のみ Base URL 欄を更新します。
func (d *Dialog) SetBaseURL(baseURL string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateEditing {
		return false
	}
	d.baseURL = baseURL
	return true
}

// SelectModel は候補に含まれるモデルだけを選択できます。
func (d *Dialog) SelectModel(model string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateEditing || !contains(d.candidates, model) {
		return false
	}
	d.model = model
	return true
}

// CanSave は保存ボタンが有効かどうかを返します。
func (d *Dialog) CanSave() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canSaveLocked()
}

func (d *Dialog) canSaveLocked() bool {
	return d.state == StateEditing && strings.TrimSpace(d.apiKey) != ""
}

// Save は入力値とプロバイダーを onSave に渡し、保存済み状態にします。
// 保存できない状態では ValidationError を返し、状態は変わりません。
func (d *Dialog) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.canSaveLocked() {
		return domain.ValidationError(msgKeyRequired)
	}

	model := strings.TrimSpace(d.model)
	if model == "" {
		model = d.defaultModel
	}
	if d.onSave != nil {
		st := Stored{
			APIKey:   strings.TrimSpace(d.apiKey),
			BaseURL:  strings.TrimSpace(d.baseURL),
			Model:    model,
			Provider: d.provider,
		}
		if err := d.onSave(st); err != nil {
			d.logger.Error("設定の保存に失敗しました", zap.Error(err))
			return err
		}
	}

	d.generation++
	d.state = StateSaved
	d.loading = false
	return nil
}

// Cancel は保存せずに閉じます。
func (d *Dialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateEditing {
		return
	}
	d.generation++
	d.state = StateCancelled
	d.loading = false
}

// HandleKey は Escape キーでダイアログを取り消します。
func (d *Dialog) HandleKey(key string) {
	if key == keyEscape {
		d.Cancel()
	}
}

// ClickBackdrop は背景クリックでダイアログを取り消します。
func (d *Dialog) ClickBackdrop() {
	d.Cancel()
}

// RefreshModels は入力中の API キーでモデル一覧を取得し、候補を置き換えます。
// 取得中はロックを保持せず、閉じたり開き直したりした後に届いた結果は捨てます。
func (d *Dialog) RefreshModels(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateEditing || d.loading {
		d.mu.Unlock()
		return nil
	}
	key := strings.TrimSpace(d.apiKey)
	if key == "" {
		d.errMsg = msgKeyRequired
		d.mu.Unlock()
		return domain.ValidationError(msgKeyRequired)
	}
	d.loading = true
	d.errMsg = ""
	gen := d.generation
	creds := domain.Credentials{APIKey: key, BaseURL: strings.TrimSpace(d.baseURL), Provider: d.provider}
	lister := d.lister
	d.mu.Unlock()

	var (
		models []string
		err    error
	)
	if lister != nil {
		models, err = lister(ctx, creds)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.generation != gen || d.state != StateEditing {
		d.logger.Debug("閉じた後に届いたモデル一覧を破棄しました")
		return nil
	}
	d.loading = false

	if err != nil {
		d.errMsg = displayMessage(err)
		return err
	}

	unique := dedupe(models)
	if len(unique) == 0 {
		d.errMsg = msgNoImageModels
		d.candidates = []string{d.defaultModel}
		d.model = d.defaultModel
		return nil
	}
	d.candidates = unique
	if !contains(unique, d.model) {
		d.model = unique[0]
	}
	return nil
}

// Snapshot は現在の表示内容のコピーを返します。
func (d *Dialog) Snapshot() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	keySet := strings.TrimSpace(d.apiKey) != ""
	return View{
		State:      d.state,
		APIKey:     d.apiKey,
		APIKeySet:  keySet,
		BaseURL:    d.baseURL,
		Model:      d.model,
		Candidates: append([]string(nil), d.candidates...),
		Error:      d.errMsg,
		Loading:    d.loading,
		CanSave:    d.canSaveLocked(),
		CanRefresh: d.state == StateEditing && keySet && !d.loading,
	}
}

// displayMessage は分類済みのエラーならそのメッセージを、それ以外は汎用メッセージを返します。
func displayMessage(err error) string {
	if e, ok := domain.AsError(err); ok && e.Message != "" {
		return e.Message
	}
	return msgLoadModelsFail
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

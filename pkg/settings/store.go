package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

// Stored はファイルに保存される接続設定です。Provider が空のファイルは OpenAI 向けとして扱います。
type Stored struct {
	APIKey   string          `yaml:"api_key"`
	BaseURL  string          `yaml:"base_url,omitempty"`
	Model    string          `yaml:"model,omitempty"`
	Provider domain.Provider `yaml:"provider,omitempty"`
}

// FileStore は接続設定を YAML ファイルに保存する外部ストアです。
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore は指定パスを使う FileStore を作成します。
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path は保存先のパスを返します。
func (s *FileStore) Path() string {
	return s.path
}

// Load は保存済みの設定を読み込みます。ファイルが無ければゼロ値を返します。
func (s *FileStore) Load() (Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *FileStore) loadLocked() (Stored, error) {
	var st Stored
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", s.path, err)
	}
	return st, nil
}

// Save は設定全体を保存します。Dialog の SaveFunc として使えます。
func (s *FileStore) Save(st Stored) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(st)
}

func (s *FileStore) writeLocked(st Stored) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("設定のシリアライズに失敗しました: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
	}

	// 書き込み途中のファイルを読まれないよう一時ファイルから置き換える
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("設定ファイルの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗しました: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("設定ファイルの権限変更に失敗しました: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("設定ファイルの置き換えに失敗しました: %w", err)
	}
	return nil
}

// Clear は保存済みの設定を削除します。ファイルが無い場合は何もしません。
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("設定ファイルの削除に失敗しました: %w", err)
	}
	return nil
}

// Resolve は保存済みの設定と環境の既定値から、呼び出しに使う Credentials と
// ダイアログに渡す Current を求めます。
// 使うプロバイダーは defaults.Provider で決まり、別プロバイダー向けに保存された値は使いません。
// キーが保存されていなければ既定値のキーを使い、Current.APIKey は nil のままにします。
func Resolve(st Stored, defaults domain.Credentials) (domain.Credentials, Current) {
	creds := domain.Credentials{
		APIKey:   strings.TrimSpace(defaults.APIKey),
		BaseURL:  strings.TrimSpace(defaults.BaseURL),
		Model:    strings.TrimSpace(defaults.Model),
		Provider: defaults.Provider.Normalize(),
	}
	if st.Provider.Normalize() != creds.Provider {
		return creds, Current{BaseURL: creds.BaseURL, Model: creds.Model}
	}

	creds.BaseURL = firstNonEmpty(st.BaseURL, creds.BaseURL)
	creds.Model = firstNonEmpty(st.Model, creds.Model)
	cur := Current{BaseURL: creds.BaseURL, Model: creds.Model}
	if key := strings.TrimSpace(st.APIKey); key != "" {
		creds.APIKey = key
		cur.APIKey = &key
	}
	return creds, cur
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

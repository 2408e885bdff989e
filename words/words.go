// words/words.go
package words

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// 词语接口不可用时的兜底词对，保证取词失败永远不会阻塞开局
const (
	FallbackCivilian = "apple"
	FallbackSpy      = "banana"
)

// Supplier 取词接口：返回 (平民词, 卧底词)
type Supplier interface {
	FetchPair() (civilian, spy string, err error)
}

// HTTPSupplier 调用远程随机词接口的实现
type HTTPSupplier struct {
	client *http.Client
	url    string
}

// NewHTTPSupplier 创建远程取词客户端，timeout 限定单次请求时长
func NewHTTPSupplier(url string, timeout time.Duration) *HTTPSupplier {
	return &HTTPSupplier{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (s *HTTPSupplier) FetchPair() (string, string, error) {
	resp, err := s.client.Get(s.url)
	if err != nil {
		return "", "", fmt.Errorf("word supply request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("word supply returned status %d", resp.StatusCode)
	}

	var pair []string
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return "", "", fmt.Errorf("word supply returned invalid body: %w", err)
	}
	if len(pair) < 2 {
		return "", "", fmt.Errorf("word supply returned %d words, need 2", len(pair))
	}

	return pair[0], pair[1], nil
}

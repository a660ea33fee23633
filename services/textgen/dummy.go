package textgensvc

import (
	"context"
	"sync"

	"github.com/trezcool/darasa/core"
)

// DummyService is a deterministic TextGenerator for tests and local dev.
type DummyService struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string // user prompts received, in order
}

var _ core.TextGenerator = (*DummyService)(nil)

func NewDummyService(response string, err error) *DummyService {
	return &DummyService{Response: response, Err: err}
}

func (svc *DummyService) GenerateText(_ context.Context, _, prompt string) (string, error) {
	svc.mu.Lock()
	svc.Prompts = append(svc.Prompts, prompt)
	svc.mu.Unlock()

	if svc.Err != nil {
		return "", svc.Err
	}
	return svc.Response, nil
}

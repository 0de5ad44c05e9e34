package extract

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"problem-reporter/api/internal/util"
)

// OCRCache keeps successful image transcriptions keyed by content hash.
// A nil *OCRCache is a valid, always-missing cache.
type OCRCache struct {
	c *lru.Cache[string, string]
}

func NewOCRCache(size int) (*OCRCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &OCRCache{c: c}, nil
}

func (o *OCRCache) Get(image []byte) (string, bool) {
	if o == nil {
		return "", false
	}
	return o.c.Get(util.SHA256Hex(image))
}

func (o *OCRCache) Add(image []byte, text string) {
	if o == nil {
		return
	}
	o.c.Add(util.SHA256Hex(image), text)
}

func (o *OCRCache) Len() int {
	if o == nil {
		return 0
	}
	return o.c.Len()
}

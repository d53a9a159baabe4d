package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// jsonLoader reads the prediction service's upload contract.
type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

func (jsonLoader) Load(r io.Reader, _ Options) (*dataset.Dataset, []string, error) {
	p, err := dataset.DecodePayload(r)
	if err != nil {
		return nil, nil, err
	}
	return dataset.FromPayload(p)
}

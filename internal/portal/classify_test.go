package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Strategy
	}{
		{"pick list", "https://portal.test/pick-list/42/wide-moat", StrategyDirect},
		{"model portfolio", "https://portal.test/model-portfolio/7/income", StrategyIndirect},
		{"pick list wins over portfolio", "https://portal.test/pick-list/model-portfolio", StrategyDirect},
		{"screener", "https://portal.test/screen/123", StrategyUnsupported},
		{"root", "https://portal.test/", StrategyUnsupported},
		{"marker in query only", "https://portal.test/ideas?ref=pick-list", StrategyUnsupported},
		{"unparseable", "http://%zz", StrategyUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.url))
			// Deterministic: same input, same answer, every time.
			assert.Equal(t, Classify(tt.url), Classify(tt.url))
		})
	}
}

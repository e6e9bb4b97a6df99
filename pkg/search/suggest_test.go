package search

import (
	"testing"

	"github.com/matst80/slask-parts/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestAutoSuggest(t *testing.T) {
	a := NewAutoSuggest(&Tokenizer{MaxTokens: 32})
	a.InsertItem(&types.Product{Id: 1, Name: "LED driver buck", PartNumber: "TPS92682"})
	a.InsertItem(&types.Product{Id: 2, Name: "LED driver boost", PartNumber: "TPS61165"})

	assert.Equal(t, []Match{{Word: "driver", Count: 2}}, a.Suggest("dri", 10))
	assert.Equal(t, []Match{{Word: "boost", Count: 1}, {Word: "buck", Count: 1}}, a.Suggest("led b", 10))
	assert.Equal(t, []Match{{Word: "tps61165", Count: 1}}, a.Suggest("tps6", 10))
	assert.Len(t, a.Suggest("tps", 1), 1)

	a.RemoveItem(1)
	assert.Equal(t, []Match{{Word: "driver", Count: 1}}, a.Suggest("dri", 10))
	assert.Empty(t, a.Suggest("buck", 10))

	a.InsertItem(&types.Product{Id: 2, Name: "Charge pump"})
	assert.Empty(t, a.Suggest("dri", 10))
	assert.Empty(t, a.Suggest("", 10))
}

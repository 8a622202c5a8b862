package mlops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"m5.large", "t2.micro"},
		uniqueStrings([]string{"m5.large", "m5.large", "t2.micro"}))
	assert.Equal(t, []string{"a", "b", "c"},
		uniqueStrings([]string{"a", "b", "a", "c", "b", "a"}))
	assert.Equal(t, []string{}, uniqueStrings(nil))
}

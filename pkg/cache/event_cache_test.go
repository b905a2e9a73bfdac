package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKey(t *testing.T) {
	assert.Equal(t, "event:42", eventKey(42))
	assert.Equal(t, "event:42:gen", generationKey(42))
}

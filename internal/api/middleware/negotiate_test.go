package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptsJSON(t *testing.T) {
	accepted := []string{
		"",
		"*/*",
		"application/*",
		"application/json",
		"application/json; charset=utf-8",
		"text/html, application/json;q=0.9",
		"text/html,*/*;q=0.8",
	}
	rejected := []string{
		"text/html",
		"application/xml",
		"text/html, application/xhtml+xml",
	}

	for _, h := range accepted {
		assert.True(t, acceptsJSON(h), h)
	}
	for _, h := range rejected {
		assert.False(t, acceptsJSON(h), h)
	}
}

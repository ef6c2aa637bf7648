package pagescrape_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/pagescrape"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pagescrape.Errorf(pagescrape.EINVALID, "selector %q too long", "div")

	assert.Equal(t, pagescrape.EINVALID, pagescrape.ErrorCode(err))
	assert.Equal(t, "selector \"div\" too long", pagescrape.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagescrape.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pagescrape.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("scrape: %w", pagescrape.Errorf(pagescrape.EFETCH, "gave up"))

	assert.Equal(t, pagescrape.EFETCH, pagescrape.ErrorCode(err))
	assert.Equal(t, "gave up", pagescrape.ErrorMessage(err))
}

func TestErrorCode_ForeignError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, pagescrape.EINTERNAL, pagescrape.ErrorCode(err))
	assert.Equal(t, "Internal error.", pagescrape.ErrorMessage(err))
}

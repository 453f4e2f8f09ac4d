package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"goal-navigator/pkg/apperr"
)

func TestCodes(t *testing.T) {
	root := errors.New("target closed")
	inner := apperr.WrapWithReason("ClickAt", apperr.CodeBrowserNotReady, root, "page_closed")
	outer := apperr.Wrap("Execute", apperr.CodeActionFailed, fmt.Errorf("click: %w", inner), nil)

	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(outer))
	assert.True(t, apperr.HasCode(outer, apperr.CodeBrowserNotReady))
	assert.True(t, apperr.IsFatal(outer))
	assert.ErrorIs(t, outer, root)
	assert.Equal(t, "Execute: click: ClickAt: target closed", outer.Error())

	plain := apperr.InvalidReqError("Execute", "intent", errors.New("unknown intent"))
	assert.False(t, apperr.IsFatal(plain))
	assert.Empty(t, apperr.CodeOf(root))
	assert.False(t, apperr.HasCode(nil, apperr.CodeInternal))
}

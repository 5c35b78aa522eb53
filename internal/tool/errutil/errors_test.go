package errutil

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"testing"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/tool/service/fs"
	"github.com/Cyclone1070/reactagent/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want tool.ErrorKind
	}{
		{"outside", &path.OutsideError{Path: "../x"}, tool.KindOutsideWorkspace},
		{"missing", fmt.Errorf("open a.py: %w", iofs.ErrNotExist), tool.KindNotFound},
		{"directory", fmt.Errorf("%w: pkg", fs.ErrIsDir), tool.KindInvalidArguments},
		{"binary", fmt.Errorf("%w: a.bin", fs.ErrBinary), tool.KindInvalidArguments},
		{"too large", &fs.SizeError{Path: "big", Size: 2, Limit: 1}, tool.KindInvalidArguments},
		{"other", errors.New("disk on fire"), tool.KindIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var te *tool.Error
			require.ErrorAs(t, FromFS(tt.err), &te)
			assert.Equal(t, tt.want, te.Kind)
			assert.ErrorIs(t, te, tt.err)
		})
	}
}

func TestFromFS_PassThrough(t *testing.T) {
	assert.NoError(t, FromFS(nil))
	assert.Equal(t, context.Canceled, FromFS(context.Canceled))

	tagged := tool.Errorf(tool.KindTimeout, "slow")
	assert.Same(t, tagged, FromFS(tagged))
}

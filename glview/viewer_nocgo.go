//go:build tinygo || !cgo

package glview

import (
	"context"
	"errors"

	"github.com/soypat/prismscene"
)

func Run(ctx context.Context, cfg prismscene.Config) error {
	return errors.New("require cgo for windowed rendering")
}

package newton

import (
	"context"
	"image"
)

// Renderer rasterizes one tile of the frame described by u.
// tile is given in device pixel coordinates of the full u.Size image.
type Renderer interface {
	RenderTile(u Uniforms, tile image.Rectangle) (image.RGBA, error)
}

// Sink consumes parameter snapshots, usually by handing them to a rasterizer.
type Sink interface {
	Push(ctx context.Context, u Uniforms) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, u Uniforms) error

func (f SinkFunc) Push(ctx context.Context, u Uniforms) error {
	return f(ctx, u)
}

package phase

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{
			name: "saddle",
			req:  Request{Type: TypeSaddle, XRange: defaultRange(), YRange: defaultRange()},
		},
		{
			name: "nodal sink",
			req:  Request{Type: TypeNodalSink, XRange: defaultRange(), YRange: defaultRange()},
		},
		{
			name: "spiral",
			req:  Request{Type: TypeSpiral, XRange: defaultRange(), YRange: defaultRange()},
		},
		{
			name: "center",
			req:  Request{Type: TypeCenter, XRange: defaultRange(), YRange: defaultRange()},
		},
		{
			name: "canned type with junk custom expressions still renders",
			req: Request{
				Type:   TypeCenter,
				DXdt:   "os.system('rm -rf /')",
				DYdt:   ")))(((",
				XRange: defaultRange(),
				YRange: defaultRange(),
			},
		},
		{
			name: "custom field",
			req: Request{
				Type:   TypeCustom,
				DXdt:   "y",
				DYdt:   "-sin(x)",
				XRange: defaultRange(),
				YRange: defaultRange(),
			},
		},
		{
			name: "asymmetric window",
			req: Request{
				Type:   TypeSaddle,
				XRange: [2]float64{-1, 9},
				YRange: [2]float64{-0.5, 0.5},
			},
		},
	}

	renderer := NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.Render(tt.req)
			require.NoError(t, err)

			require.True(t, bytes.HasPrefix(got, pngMagic), "output is not a PNG")
			img, err := png.Decode(bytes.NewReader(got))
			require.NoError(t, err)
			bounds := img.Bounds()
			assert.Equal(t, 1000, bounds.Dx())
			assert.Equal(t, 1000, bounds.Dy())
		})
	}
}

func TestRenderer_Render_Errors(t *testing.T) {
	renderer := NewRenderer()

	t.Run("custom with an invalid expression", func(t *testing.T) {
		_, err := renderer.Render(Request{
			Type:   TypeCustom,
			DXdt:   "import os",
			DYdt:   "y",
			XRange: defaultRange(),
			YRange: defaultRange(),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dx/dt")
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := renderer.Render(Request{
			Type:   TypeSaddle,
			XRange: [2]float64{3, 3},
			YRange: defaultRange(),
		})
		assert.ErrorIs(t, err, ErrBadRange)
	})
}

package canvas

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds the four faces of the Go font family. Parsing the TTF
// blobs is comparatively slow, so it happens once per process.
type fontSet struct {
	regular    *truetype.Font
	bold       *truetype.Font
	italic     *truetype.Font
	boldItalic *truetype.Font
}

var (
	fontsOnce sync.Once
	fonts     *fontSet
	fontsErr  error
)

func loadFonts() (*fontSet, error) {
	fontsOnce.Do(func() {
		fs := &fontSet{}
		faces := []struct {
			name string
			ttf  []byte
			dst  **truetype.Font
		}{
			{"Go Regular", goregular.TTF, &fs.regular},
			{"Go Bold", gobold.TTF, &fs.bold},
			{"Go Italic", goitalic.TTF, &fs.italic},
			{"Go Bold Italic", gobolditalic.TTF, &fs.boldItalic},
		}
		for _, face := range faces {
			f, err := truetype.Parse(face.ttf)
			if err != nil {
				fontsErr = fmt.Errorf("parsing font %s: %w", face.name, err)
				return
			}
			*face.dst = f
		}
		fonts = fs
	})
	return fonts, fontsErr
}

func (fs *fontSet) pick(bold, italic bool) *truetype.Font {
	switch {
	case bold && italic:
		return fs.boldItalic
	case bold:
		return fs.bold
	case italic:
		return fs.italic
	default:
		return fs.regular
	}
}

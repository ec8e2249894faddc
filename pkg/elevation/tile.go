package elevation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/aurel42/sunviewfinder/pkg/request"
)

// DefaultZoom is the slippy-map zoom level fetched by the tile
// strategy: at zoom 12 each tile covers roughly 9.5 km at the equator,
// comfortably finer than the pipeline's ray sample spacing.
const DefaultZoom = 12

// tileKey identifies a single slippy-map tile.
type tileKey struct {
	Z, X, Y int
}

// TileProvider resolves elevations by fetching and decoding Terrarium
// PNG tiles from a slippy-map tile server. Concurrent requests for the
// same tile are coalesced: the first requester fetches, the rest await
// the same in-flight result.
type TileProvider struct {
	client  *request.Client
	baseURL string // e.g. "https://elevation-tiles-prod.s3.amazonaws.com/terrarium/{z}/{x}/{y}.png"
	zoom    int

	mu       sync.Mutex
	inFlight map[tileKey]chan tileResult
	tiles    map[tileKey]*image.NRGBA
}

type tileResult struct {
	img *image.NRGBA
	err error
}

// NewTileProvider creates a tile-based elevation resolver. baseURL must
// contain "{z}", "{x}", "{y}" placeholders.
func NewTileProvider(client *request.Client, baseURL string) *TileProvider {
	return &TileProvider{
		client:   client,
		baseURL:  baseURL,
		zoom:     DefaultZoom,
		inFlight: make(map[tileKey]chan tileResult),
		tiles:    make(map[tileKey]*image.NRGBA),
	}
}

// Resolve fetches the elevation for each point, grouping points by the
// tile they fall into so each distinct tile is downloaded at most once.
func (t *TileProvider) Resolve(ctx context.Context, points []Point) []*float64 {
	n := 1 << uint(t.zoom)
	results := make([]*float64, len(points))

	tileOf := make([]tileKey, len(points))
	for i, p := range points {
		tileOf[i] = tileKeyFor(p, n)
	}

	for i, p := range points {
		img, err := t.fetchTile(ctx, tileOf[i], n)
		if err != nil {
			continue
		}
		results[i] = elevationAt(img, p, tileOf[i], n)
	}

	return results
}

func tileKeyFor(p Point, n int) tileKey {
	x := int(math.Floor((p.Lon + 180.0) / 360.0 * float64(n)))
	latRad := p.Lat * math.Pi / 180.0
	y := int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * float64(n)))
	return tileKey{Z: DefaultZoom, X: clampInt(x, 0, n-1), Y: clampInt(y, 0, n-1)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fetchTile returns the decoded tile image, coalescing concurrent
// fetches for the same tile into a single network request.
func (t *TileProvider) fetchTile(ctx context.Context, key tileKey, n int) (*image.NRGBA, error) {
	t.mu.Lock()
	if img, ok := t.tiles[key]; ok {
		t.mu.Unlock()
		return img, nil
	}
	if ch, ok := t.inFlight[key]; ok {
		t.mu.Unlock()
		res := <-ch
		return res.img, res.err
	}

	ch := make(chan tileResult, 1)
	t.inFlight[key] = ch
	t.mu.Unlock()

	img, err := t.downloadAndDecode(ctx, key)

	t.mu.Lock()
	if err == nil {
		t.tiles[key] = img
	}
	delete(t.inFlight, key)
	t.mu.Unlock()

	ch <- tileResult{img: img, err: err}
	return img, err
}

func (t *TileProvider) downloadAndDecode(ctx context.Context, key tileKey) (*image.NRGBA, error) {
	url := tileURL(t.baseURL, key)
	body, err := t.client.Get(ctx, url, url)
	if err != nil {
		return nil, fmt.Errorf("elevation: fetch tile %d/%d/%d: %w", key.Z, key.X, key.Y, err)
	}

	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevation: decode tile %d/%d/%d: %w", key.Z, key.X, key.Y, err)
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		conv := image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				conv.Set(x, y, img.At(x, y))
			}
		}
		nrgba = conv
	}
	return nrgba, nil
}

func tileURL(base string, key tileKey) string {
	url := strings.ReplaceAll(base, "{z}", strconv.Itoa(key.Z))
	url = strings.ReplaceAll(url, "{x}", strconv.Itoa(key.X))
	url = strings.ReplaceAll(url, "{y}", strconv.Itoa(key.Y))
	return url
}

// elevationAt decodes the Terrarium RGB-encoded elevation at the pixel
// within tile that corresponds to p.
func elevationAt(img *image.NRGBA, p Point, key tileKey, n int) *float64 {
	px := int(math.Floor(((p.Lon+180.0)/360.0*float64(n) - float64(key.X)) * 256))
	latRad := p.Lat * math.Pi / 180.0
	mercatorY := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0
	py := int(math.Floor((mercatorY*float64(n) - float64(key.Y)) * 256))

	px = clampInt(px, 0, 255)
	py = clampInt(py, 0, 255)

	b := img.Bounds()
	r, g, bl, _ := img.At(b.Min.X+px, b.Min.Y+py).RGBA()
	// image.NRGBA.At returns alpha-premultiplied 16-bit channels via the
	// color.Color interface; shift back down to 8-bit Terrarium values.
	rr := float64(r >> 8)
	gg := float64(g >> 8)
	bb := float64(bl >> 8)

	elev := rr*256 + gg + bb/256 - 32768
	return &elev
}

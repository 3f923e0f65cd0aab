// Package collage собирает из нескольких изображений одну сетку-коллаж.
package collage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
)

// ErrNoImages возвращается при вызове Compose с пустым списком.
// Это нарушение контракта вызывающей стороной.
var ErrNoImages = errors.New("collage: no images provided")

// ErrNoDecodableImages возвращается, когда ни одно из переданных
// изображений не удалось декодировать.
var ErrNoDecodableImages = errors.New("collage: no decodable images")

const (
	defaultCellSize = 800
	defaultBorder   = 4

	// Максимальная сторона одиночного изображения (без сетки).
	singleMaxSide = 1600

	singleQuality = 90
	gridQuality   = 92
)

// Config задает геометрию сетки. Нулевые значения заменяются умолчаниями.
type Config struct {
	CellSize int `yaml:"cell_size"`
	Border   int `yaml:"border"`
}

// Compositor детерминированно собирает коллаж из набора изображений.
// Безопасен для конкурентного использования.
type Compositor struct {
	cellSize   int
	border     int
	background color.NRGBA
	logger     *slog.Logger
}

// New создает Compositor с темно-серым фоном.
func New(cfg Config, logger *slog.Logger) *Compositor {
	if cfg.CellSize <= 0 {
		cfg.CellSize = defaultCellSize
	}
	if cfg.Border <= 0 {
		cfg.Border = defaultBorder
	}
	return &Compositor{
		cellSize:   cfg.CellSize,
		border:     cfg.Border,
		background: color.NRGBA{R: 30, G: 30, B: 30, A: 255},
		logger:     logger,
	}
}

// Compose собирает из списка изображений одно, закодированное в JPEG.
// Порядок изображений сохраняется: слева направо, сверху вниз.
// Недекодируемые изображения пропускаются с предупреждением; если не осталось
// ни одного, возвращается ErrNoDecodableImages.
func (c *Compositor) Compose(encoded [][]byte) ([]byte, error) {
	if len(encoded) == 0 {
		return nil, ErrNoImages
	}

	images := make([]image.Image, 0, len(encoded))
	for i, data := range encoded {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			c.logger.Warn("skipping undecodable image",
				slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return nil, ErrNoDecodableImages
	}

	if len(images) == 1 {
		return c.composeSingle(images[0])
	}
	if len(images) == 3 {
		return c.composeTriple(images)
	}
	return c.composeGrid(images)
}

// composeSingle уменьшает одиночное изображение до максимальной стороны
// singleMaxSide, сохраняя пропорции и никогда не увеличивая его.
func (c *Compositor) composeSingle(img image.Image) ([]byte, error) {
	resized := imaging.Fit(img, singleMaxSide, singleMaxSide, imaging.Lanczos)
	return encodeJPEG(resized, singleQuality)
}

// composeTriple — особая раскладка для трех изображений: два в верхнем ряду
// и одно на всю ширину в нижнем.
func (c *Compositor) composeTriple(images []image.Image) ([]byte, error) {
	cell, border := c.cellSize, c.border
	side := cell*2 + border*3
	canvas := imaging.New(side, side, c.background)

	top0 := imaging.Fill(images[0], cell, cell, imaging.Center, imaging.Lanczos)
	top1 := imaging.Fill(images[1], cell, cell, imaging.Center, imaging.Lanczos)
	bottom := imaging.Fill(images[2], cell*2+border, cell, imaging.Center, imaging.Lanczos)

	canvas = imaging.Paste(canvas, top0, image.Pt(border, border))
	canvas = imaging.Paste(canvas, top1, image.Pt(border*2+cell, border))
	canvas = imaging.Paste(canvas, bottom, image.Pt(border, border*2+cell))

	return encodeJPEG(canvas, gridQuality)
}

// composeGrid — стандартная сетка для 2 и 4+ изображений.
func (c *Compositor) composeGrid(images []image.Image) ([]byte, error) {
	cols, rows := gridLayout(len(images))
	cell, border := c.cellSize, c.border

	canvasW := cell*cols + border*(cols+1)
	canvasH := cell*rows + border*(rows+1)
	canvas := imaging.New(canvasW, canvasH, c.background)

	for i, img := range images {
		filled := imaging.Fill(img, cell, cell, imaging.Center, imaging.Lanczos)
		col, row := i%cols, i/cols
		x := border + col*(cell+border)
		y := border + row*(cell+border)
		canvas = imaging.Paste(canvas, filled, image.Pt(x, y))
	}

	return encodeJPEG(canvas, gridQuality)
}

// gridLayout выбирает размер сетки только по количеству изображений.
// Случай n=3 обрабатывается отдельной раскладкой и сюда не попадает.
func gridLayout(n int) (cols, rows int) {
	switch {
	case n <= 2:
		return 2, 1
	case n <= 4:
		return 2, 2
	case n <= 6:
		return 3, 2
	case n <= 9:
		return 3, 3
	default:
		return 3, (n + 2) / 3
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode collage: %w", err)
	}
	return buf.Bytes(), nil
}

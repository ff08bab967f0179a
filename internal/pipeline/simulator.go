package pipeline

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/rs/zerolog"

	"github.com/santhosh11wnl/Sai/internal/annotation"
	"github.com/santhosh11wnl/Sai/internal/config"
	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/geometry"
	"github.com/santhosh11wnl/Sai/internal/imaging"
	"github.com/santhosh11wnl/Sai/internal/inhibit"
	"github.com/santhosh11wnl/Sai/internal/vision"
)

// groupOrder is the category order of the shape list handed to the
// rewriter; OrderLike restores file order afterwards.
var groupOrder = []annotation.Category{
	annotation.CategoryActivate,
	annotation.CategoryInhibit,
	annotation.CategoryGene,
	annotation.CategoryText,
	annotation.CategoryCompound,
	annotation.CategoryActivateRelation,
	annotation.CategoryInhibitRelation,
}

// Opener decodes the image at path.
type Opener func(path string) (image.Image, error)

// Simulator converts activation arrows of annotated diagrams into
// inhibition arrows.
type Simulator struct {
	Matcher    *detection.Matcher
	Compositor *inhibit.Compositor

	// TextCategories are erased from the image before contours are traced.
	TextCategories []annotation.Category
	CeilingRatio   float64
	Seed           int64

	ImageDir            string
	OutputImageDir      string
	OutputAnnotationDir string
	DebugDir            string
	Prefix              string

	// Open loads source images. It defaults to imaging.Open.
	Open Opener

	// Release, when set, is called with the path of every image Open
	// returned once the file that needed it is done, whatever the outcome.
	Release func(path string)

	Logger zerolog.Logger
}

// New builds a simulator from cfg, which should already be validated.
func New(cfg *config.Config, logger zerolog.Logger) (*Simulator, error) {
	engine, err := vision.New(cfg.Simulation.Engine, cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision engine: %w", err)
	}
	palette, err := imaging.NewMarkerPalette(cfg.Marker.Color)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("engine", engine.Name()).
		Str("marker_color", palette.Mode()).
		Int("min_thickness", cfg.Marker.MinThickness).
		Int("max_thickness", cfg.Marker.MaxThickness).
		Msg("simulator configured")

	comp := inhibit.NewCompositor(engine, palette)
	comp.Radius = cfg.Inpaint.Radius
	comp.MinThickness = cfg.Marker.MinThickness
	comp.MaxThickness = cfg.Marker.MaxThickness

	return &Simulator{
		Matcher:             detection.NewMatcher(engine),
		Compositor:          comp,
		TextCategories:      annotation.ParseCategories(cfg.Simulation.TextCategories),
		CeilingRatio:        cfg.Simulation.CeilingRatio,
		Seed:                cfg.Simulation.Seed,
		ImageDir:            cfg.Paths.ImageDir,
		OutputImageDir:      cfg.Paths.OutputImageDir,
		OutputAnnotationDir: cfg.Paths.OutputAnnotationDir,
		DebugDir:            cfg.Paths.DebugDir,
		Prefix:              cfg.Simulation.OutputPrefix,
		Open:                imaging.Open,
		Logger:              logger.With().Str("engine", engine.Name()).Logger(),
	}, nil
}

// Output is the result of processing one image.
type Output struct {
	Image *image.NRGBA

	// Shapes are every input shape, rewritten, grouped by category.
	Shapes []*annotation.Shape

	Matches []detection.Match
	Results []inhibit.Result
	Stats   detection.MatchStats
	Rewrite annotation.RewriteStats
}

// ProcessImage matches the arrows of img, replaces them with inhibit
// markers and rewrites the affected shapes in place.
//
// others holds every remaining shape by category; texts may also appear in
// it. ProcessImage returns ErrSkip when no arrow matched.
func (s *Simulator) ProcessImage(img image.Image, arrows, texts []*annotation.Shape, others map[annotation.Category][]*annotation.Shape, ceilingRatio float64, rng *rand.Rand) (*Output, error) {
	matches, stats, err := s.Matcher.Match(img, arrows, texts, ceilingRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to match arrows: %w", err)
	}
	s.Logger.Debug().
		Int("arrows", stats.Arrows).
		Int("contours", stats.Contours).
		Int("accepted", stats.Accepted).
		Int("no_overlap", stats.NoOverlap).
		Int("nested", stats.Nested).
		Bool("stopped_early", stats.StoppedEarly).
		Msg("matched arrows")
	if len(matches) == 0 {
		return &Output{Stats: stats}, ErrSkip
	}

	composited, results, err := s.Compositor.Compose(img, matches, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to compose image: %w", err)
	}
	for i, r := range results {
		if !r.OK() {
			s.Logger.Warn().Err(r.Err).Int("match", i).Str("arrow", r.Match.Arrow.Index).Msg("cannot synthesize inhibit marker")
		}
	}

	shapes := annotation.GroupByCategory(collectShapes(arrows, texts, others), groupOrder)
	rw := annotation.Rewrite(shapes, inhibit.Replacements(results))

	return &Output{
		Image:   composited,
		Shapes:  shapes,
		Matches: matches,
		Results: results,
		Stats:   stats,
		Rewrite: rw,
	}, nil
}

// collectShapes concatenates the shape lists, others in category order,
// keeping the first occurrence of each shape.
func collectShapes(arrows, texts []*annotation.Shape, others map[annotation.Category][]*annotation.Shape) []*annotation.Shape {
	cats := make([]string, 0, len(others))
	for c := range others {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	seen := make(map[*annotation.Shape]bool)
	var out []*annotation.Shape
	add := func(list []*annotation.Shape) {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	add(arrows)
	add(texts)
	for _, c := range cats {
		add(others[annotation.Category(c)])
	}
	return out
}

// FileResult describes the files written for one annotation.
type FileResult struct {
	Annotation string `json:"annotation"`
	Source     string `json:"source_image"`
	Output     string `json:"output_annotation"`
	Image      string `json:"output_image"`
	Debug      string `json:"debug_image,omitempty"`

	Stats   detection.MatchStats    `json:"match"`
	Rewrite annotation.RewriteStats `json:"rewrite"`
	Failed  int                     `json:"failed_markers"`
	Markers []inhibit.Marker        `json:"markers"`
}

// ProcessFile simulates inhibit arrows for one annotation file and writes
// the new image and annotation under the output directories.
//
// Load failures are reported as *AnnotationLoadError. When nothing matched
// the error is an *EmptyResultError, which matches ErrSkip.
func (s *Simulator) ProcessFile(path string) (*FileResult, error) {
	logger := s.Logger.With().Str("annotation", filepath.Base(path)).Logger()

	file, err := annotation.Load(path)
	if err != nil {
		return nil, &AnnotationLoadError{Path: path, Err: err}
	}
	if file.ImagePath == "" {
		return nil, &AnnotationLoadError{Path: path, Err: errors.New("annotation has no imagePath")}
	}
	if !imaging.IsImageFile(file.ImagePath) {
		return nil, &AnnotationLoadError{Path: path, Err: fmt.Errorf("unsupported image format %q", filepath.Ext(file.ImagePath))}
	}

	open := s.Open
	if open == nil {
		open = imaging.Open
	}
	imgPath := filepath.Join(s.ImageDir, file.ImagePath)
	img, err := open(imgPath)
	if err != nil {
		return nil, &AnnotationLoadError{Path: imgPath, Err: err}
	}
	if s.Release != nil {
		defer s.Release(imgPath)
	}

	arrows := file.ShapesFor(annotation.CategoryActivate)
	var texts []*annotation.Shape
	for _, c := range s.TextCategories {
		texts = append(texts, file.ShapesFor(c)...)
	}
	others := make(map[annotation.Category][]*annotation.Shape)
	for _, sh := range file.Shapes {
		if !sh.Category.Known() {
			logger.Debug().Str("label", sh.Label()).Msg("unknown category, shape kept as is")
		}
		if !sh.Is(annotation.CategoryActivate) {
			others[sh.Category] = append(others[sh.Category], sh)
		}
	}

	out, err := s.ProcessImage(img, arrows, texts, others, s.CeilingRatio, s.rngFor(path))
	if errors.Is(err, ErrSkip) {
		logger.Debug().Int("arrows", len(arrows)).Msg("no arrow matched, skipping")
		return nil, &EmptyResultError{Path: path, Stats: out.Stats}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Base(file.ImagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	res := &FileResult{
		Annotation: path,
		Source:     imgPath,
		Image:      filepath.Join(s.OutputImageDir, s.Prefix+base),
		Output:     filepath.Join(s.OutputAnnotationDir, s.Prefix+stem+".json"),
		Stats:      out.Stats,
		Rewrite:    out.Rewrite,
		Failed:     inhibit.Failed(out.Results),
	}
	for _, r := range out.Results {
		if r.OK() {
			res.Markers = append(res.Markers, r.Marker)
		}
	}

	if err := imaging.Save(out.Image, res.Image); err != nil {
		return nil, err
	}

	file.Shapes = annotation.OrderLike(file.Keys(), out.Shapes)
	file.ImagePath = s.Prefix + base
	b := out.Image.Bounds()
	file.ImageWidth, file.ImageHeight = b.Dx(), b.Dy()
	file.ClearImageData()
	if err := file.Save(res.Output); err != nil {
		if rmErr := os.Remove(res.Image); rmErr != nil {
			logger.Warn().Err(rmErr).Str("image", res.Image).Msg("failed to remove output image")
		}
		return nil, err
	}

	if s.DebugDir != "" {
		res.Debug = filepath.Join(s.DebugDir, s.Prefix+stem+"_debug.png")
		if err := imaging.Save(imaging.DebugOverlay(img, overlayItems(out.Results)), res.Debug); err != nil {
			logger.Warn().Err(err).Msg("failed to write debug overlay")
			res.Debug = ""
		}
	}

	logger.Info().
		Str("image", res.Image).
		Int("arrows", out.Stats.Arrows).
		Int("matched", out.Stats.Accepted).
		Int("rewritten", out.Rewrite.Arrows).
		Int("relations", out.Rewrite.Relations).
		Msg("simulated inhibit arrows")
	return res, nil
}

// rngFor derives the random source of one file from the seed and the file
// name, so a batch gives the same output regardless of scheduling.
func (s *Simulator) rngFor(path string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(filepath.Base(path)))
	return rand.New(rand.NewSource(s.Seed ^ int64(h.Sum64())))
}

func overlayItems(results []inhibit.Result) []imaging.OverlayItem {
	items := make([]imaging.OverlayItem, 0, len(results))
	for _, r := range results {
		box := r.Match.Rect.IntPoints()
		item := imaging.OverlayItem{
			ArrowBox: box[:],
			HeadBox:  headPolygon(r.Match.Head),
		}
		if r.OK() {
			item.Inhibit = r.Marker.Box.Points()
		}
		items = append(items, item)
	}
	return items
}

// headPolygon outlines a head box; two-point boxes are expanded to their
// four corners.
func headPolygon(head []r2.Point) []image.Point {
	pts := geometry.TruncateAll(head)
	if len(pts) != 2 {
		return pts
	}
	a, b := pts[0], pts[1]
	return []image.Point{a, {X: b.X, Y: a.Y}, b, {X: a.X, Y: b.Y}}
}

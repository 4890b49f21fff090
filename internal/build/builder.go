package build

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rrbuilder/internal/config"
	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/internal/logger"
	"github.com/vango-dev/rrbuilder/internal/manifest"
	"github.com/vango-dev/rrbuilder/internal/metrics"
	"github.com/vango-dev/rrbuilder/internal/source"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

const tracerName = "github.com/vango-dev/rrbuilder/internal/build"

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Source names the manifest that was read.
	Source string

	// Tree holds the descriptors in hierarchical form.
	Tree []routetree.Descriptor

	// Flat holds the descriptors in flat form.
	Flat []routetree.Descriptor

	// Count is the number of descriptors.
	Count int

	// Output is where the descriptors were written ("-" for stdout).
	// Empty after Compile.
	Output string

	// Encoded is the encoded output. Empty after Compile.
	Encoded []byte

	// Digest is the SHA256 of Encoded.
	Digest string

	// Unchanged is true when the output file already held Encoded and was
	// left untouched.
	Unchanged bool
}

// Descriptors returns Flat or Tree according to format.
func (r *Result) Descriptors(format string) []routetree.Descriptor {
	if format == config.FormatTree {
		return r.Tree
	}
	return r.Flat
}

// Options configures the builder.
type Options struct {
	// Output overrides the configured output path. "-" writes to Stdout.
	Output string

	// Format overrides the configured layout (flat or tree).
	Format string

	// Encoding overrides the configured encoding (json or yaml).
	Encoding string

	// Stdout receives output when Output is "-". Default: os.Stdout.
	Stdout io.Writer

	// Logger receives pipeline logs. Default: discard.
	Logger *slog.Logger

	// Metrics records build counts and durations. May be nil.
	Metrics *metrics.Metrics

	// Tracer traces each build. Default: the global otel tracer.
	Tracer trace.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs the descriptor pipeline.
type Builder struct {
	config  *config.Config
	source  source.Source
	options Options
	routes  *routetree.Builder
}

// New creates a new builder reading from src.
func New(cfg *config.Config, src source.Source, options Options) *Builder {
	// Apply config defaults to options
	if options.Output == "" {
		options.Output = cfg.OutputPath()
	}
	if options.Format == "" {
		options.Format = cfg.Format
	}
	if options.Encoding == "" {
		options.Encoding = cfg.Encoding
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(tracerName)
	}

	routeOpts := []routetree.BuilderOption{
		routetree.WithPathConflictMode(cfg.PathConflictMode()),
	}
	if options.Logger != nil {
		routeOpts = append(routeOpts, routetree.WithLogger(options.Logger))
	}

	return &Builder{
		config:  cfg,
		source:  src,
		options: options,
		routes:  routetree.NewBuilder(routeOpts...),
	}
}

// Source returns the manifest source.
func (b *Builder) Source() source.Source {
	return b.source
}

// Compile reads, parses and compiles the manifest without writing output.
func (b *Builder) Compile(ctx context.Context) (*Result, error) {
	return b.run(ctx, false)
}

// Build compiles the manifest and writes the encoded descriptors.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	return b.run(ctx, true)
}

func (b *Builder) run(ctx context.Context, write bool) (result *Result, err error) {
	start := time.Now()
	name := b.source.Name()

	ctx, span := b.options.Tracer.Start(ctx, "rrbuilder.build",
		trace.WithAttributes(
			attribute.String("rrbuilder.manifest", name),
			attribute.Bool("rrbuilder.write", write),
		),
	)
	defer func() {
		duration := time.Since(start)
		status := metrics.StatusOK
		if err != nil {
			status = failureStatus(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			b.log().Error("build failed", "manifest", name, "status", status, "duration", duration)
		} else {
			result.Duration = duration
			span.SetAttributes(attribute.Int("rrbuilder.descriptors", result.Count))
			span.SetStatus(codes.Ok, "")
			b.log().Info("build complete", "manifest", name, "routes", result.Count, "duration", duration)
		}
		b.options.Metrics.RecordBuild(status, duration, countOf(result))
		span.End()
	}()

	b.progress("Reading " + name + "...")
	data, err := b.source.Read(ctx)
	if err != nil {
		return nil, err
	}

	b.progress("Parsing manifest...")
	nodes, err := manifest.Parse(name, data)
	if err != nil {
		return nil, err
	}

	b.progress("Compiling route tree...")
	tree, err := b.routes.BuildTree(nodes...)
	if err != nil {
		return nil, err
	}
	flat := routetree.Flatten(tree)
	result = &Result{
		Source: name,
		Tree:   tree,
		Flat:   flat,
		Count:  len(flat),
	}
	if !write {
		return result, nil
	}

	b.progress("Encoding descriptors...")
	encoded, err := Encode(result.Descriptors(b.options.Format), b.options.Encoding)
	if err != nil {
		return nil, err
	}
	result.Encoded = encoded
	result.Digest = Digest(encoded)
	result.Output = b.options.Output

	b.progress("Writing " + b.options.Output + "...")
	unchanged, err := b.write(encoded, result.Digest)
	if err != nil {
		return nil, err
	}
	result.Unchanged = unchanged
	return result, nil
}

// Encode renders descriptors as JSON or YAML.
func Encode(descriptors []routetree.Descriptor, encoding string) ([]byte, error) {
	if descriptors == nil {
		descriptors = []routetree.Descriptor{}
	}
	switch encoding {
	case config.EncodingJSON, "":
		data, err := json.MarshalIndent(descriptors, "", "  ")
		if err != nil {
			return nil, errors.New("O001").Wrap(err)
		}
		return append(data, '\n'), nil
	case config.EncodingYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(descriptors); err != nil {
			return nil, errors.New("O001").Wrap(err)
		}
		if err := enc.Close(); err != nil {
			return nil, errors.New("O001").Wrap(err)
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.New("O002").WithDetail(fmt.Sprintf("encoding %q", encoding))
	}
}

// write stores encoded at the output path, or prints it for "-". It reports
// true when the file already held the same content.
func (b *Builder) write(encoded []byte, sum string) (bool, error) {
	out := b.options.Output
	if out == "-" {
		if _, err := b.options.Stdout.Write(encoded); err != nil {
			return false, errors.New("O001").Wrap(err)
		}
		return false, nil
	}

	if existing, err := hashFile(out); err == nil && existing == sum {
		b.log().Debug("output unchanged", "output", out)
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return false, errors.New("O001").WithDetail(out).Wrap(err)
	}
	if err := os.WriteFile(out, encoded, 0644); err != nil {
		return false, errors.New("O001").WithDetail(out).Wrap(err)
	}
	return false, nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

func (b *Builder) log() *slog.Logger {
	if b.options.Logger != nil {
		return b.options.Logger
	}
	return logger.Discard()
}

// Clean removes the output file.
func (b *Builder) Clean() error {
	if b.options.Output == "-" {
		return nil
	}
	err := os.Remove(b.options.Output)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// failureStatus separates invalid manifests from operational failures.
func failureStatus(err error) string {
	if len(routetree.ConfigErrors(err)) > 0 || isManifestError(err) {
		return metrics.StatusInvalid
	}
	return metrics.StatusError
}

func isManifestError(err error) bool {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Category == errors.CategoryManifest
	}
	return false
}

func countOf(r *Result) int {
	if r == nil {
		return 0
	}
	return r.Count
}

// Digest returns the hex SHA256 of data.
func Digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

package export

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/hupe1980/genemod/blobstore"
	"github.com/hupe1980/genemod/resource"
	"github.com/hupe1980/genemod/score"
)

// Options configures an Exporter.
type Options struct {
	// Prefix is prepended to every artifact name.
	Prefix string

	// Controller throttles upload throughput. Optional.
	Controller *resource.Controller
}

// DefaultOptions are the recommended exporter options.
var DefaultOptions = Options{}

// WithPrefix places all artifacts under the given prefix.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithController throttles artifact uploads through the given controller.
func WithController(c *resource.Controller) func(*Options) {
	return func(o *Options) {
		o.Controller = c
	}
}

// Exporter writes result artifacts to a blob store.
type Exporter struct {
	store blobstore.BlobStore
	opts  Options
}

// New creates a new Exporter on top of the given store.
func New(store blobstore.BlobStore, optFns ...func(o *Options)) *Exporter {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Exporter{store: store, opts: opts}
}

func (e *Exporter) name(name string) string {
	if e.opts.Prefix == "" {
		return name
	}
	return path.Join(e.opts.Prefix, name)
}

// create opens a throttled writer for the named artifact.
func (e *Exporter) create(ctx context.Context, name string) (io.Writer, io.Closer, error) {
	wc, err := e.store.Create(ctx, e.name(name))
	if err != nil {
		return nil, nil, fmt.Errorf("create artifact %q: %w", name, err)
	}
	return resource.ThrottleWriter(ctx, e.opts.Controller, wc), wc, nil
}

// WriteAssignments writes the gene to module assignment table as a
// gzip-compressed TSV artifact. Rows are ordered by module label, then
// by the gene order within each module.
func (e *Exporter) WriteAssignments(ctx context.Context, name string, modules map[string][]string) error {
	w, closer, err := e.create(ctx, name)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(w)

	err = writeAssignments(gz, modules)
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := closer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write assignments %q: %w", name, err)
	}
	return nil
}

func writeAssignments(w io.Writer, modules map[string][]string) error {
	if _, err := io.WriteString(w, "gene\tmodule\n"); err != nil {
		return err
	}

	labels := make([]string, 0, len(modules))
	for label := range modules {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		for _, gene := range modules[label] {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", gene, label); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteScores writes a score matrix as a gzip-compressed TSV artifact.
// The header row lists cell identifiers, followed by one row per module.
func (e *Exporter) WriteScores(ctx context.Context, name string, s *score.Scores) error {
	w, closer, err := e.create(ctx, name)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(w)

	err = writeScores(gz, s)
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := closer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write scores %q: %w", name, err)
	}
	return nil
}

func writeScores(w io.Writer, s *score.Scores) error {
	if _, err := io.WriteString(w, "module"); err != nil {
		return err
	}
	for _, cell := range s.Cells {
		if _, err := io.WriteString(w, "\t"+cell); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for i, label := range s.Labels {
		if _, err := io.WriteString(w, label); err != nil {
			return err
		}
		for _, v := range s.Values[i] {
			if _, err := io.WriteString(w, "\t"+strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

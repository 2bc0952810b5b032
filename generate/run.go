// Package generate implements the scan: discover content files, extract
// default-locale values and emit the fallback table artifact.
package generate

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"tfg/archive"
	"tfg/audit"
	"tfg/config"
	"tfg/content"
	"tfg/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Export.Format
	if to := cmd.String("to"); len(to) > 0 {
		if format, err = config.ParseExportFmt(to); err != nil {
			log.Warn("Unknown export format requested, using configured one", zap.Error(err))
			format = env.Cfg.Export.Format
		}
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.Strict = cmd.Bool("strict") || env.Cfg.Export.Strict

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Scan starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Scan completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	r := newRun(env, log)
	if err := r.process(ctx, src); err != nil {
		return err
	}

	log.Info("Extraction summary",
		zap.Int("files", r.files),
		zap.Int("keys", r.table.Len()),
		zap.Int("values", r.table.Leaves()),
		zap.Int("warnings", r.warned))

	outputName := buildOutputPath(r.table, src, dst, format, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := export(r.table, format, outputName); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}
	log.Info("Fallback table written", zap.String("file", outputName),
		zap.Int("keys", r.table.Len()), zap.Int("values", r.table.Leaves()))

	// Store extraction result for debugging
	if env.Rpt != nil {
		env.Rpt.StoreData("table.txt", []byte(r.table.String()))
		env.Rpt.Store("result"+format.Ext(), outputName)
	}

	if env.Cfg.Audit.Enable {
		rec := audit.Run{
			Started:  r.started,
			Elapsed:  time.Since(r.started),
			Source:   src,
			Format:   format.String(),
			Files:    r.files,
			Keys:     r.table.Len(),
			Leaves:   r.table.Leaves(),
			Warnings: r.warned,
		}
		if err := audit.Record(env.Cfg.Audit.Destination, rec, r.findings); err != nil {
			// audit is best effort, never fails the scan
			log.Warn("Unable to record audit entry", zap.Error(err))
		}
	}

	if env.Strict && r.warned > 0 {
		return fmt.Errorf("strict mode: %d problem(s) found during scan", r.warned)
	}
	return nil
}

// run is the single accumulator threaded through the whole scan. There is no
// shared mutable state beyond it, files are processed strictly one by one in
// a deterministic sequence.
type run struct {
	env  *state.LocalEnv
	log  *zap.Logger
	opts content.Options
	exts []string

	table    *content.Table
	files    int
	warned   int
	findings []audit.Finding
	started  time.Time
}

func newRun(env *state.LocalEnv, log *zap.Logger) *run {
	sc := env.Cfg.Scanner
	return &run{
		env: env,
		log: log,
		opts: content.Options{
			Anchor:             sc.Anchor,
			KeyField:           sc.KeyField,
			DefaultLocaleField: sc.DefaultLocaleField,
			Wrappers:           sc.Wrappers,
			MaxDepth:           sc.MaxDepth,
		},
		exts:    sc.Extensions,
		table:   content.NewTable(),
		started: time.Now(),
	}
}

func (r *run) less() func(a, b string) bool {
	if r.env.Cfg.Scanner.FileOrder == config.FileOrderNatural {
		return natural.Less
	}
	return func(a, b string) bool { return a < b }
}

// process determines the input type (directory, archive, single file or a
// path inside an archive) and processes accordingly.
func (r *run) process(ctx context.Context, src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := r.processDir(ctx, head); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := r.processArchive(ctx, head, filepath.ToSlash(tail)); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		ok, enc, err := isContentFile(head, r.exts)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if ok && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open file: %w", err)
			}
			defer file.Close()
			r.processFile(ctx, selectReader(file, enc), filepath.Base(head))
			break
		}
		return fmt.Errorf("input was not recognized as content source (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir collects candidate files under the directory first and then
// scans them in the configured deterministic order.
func (r *run) processDir(ctx context.Context, dir string) error {
	type candidate struct {
		path string
		src  string
		enc  srcEncoding
	}
	var candidates []candidate

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			r.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		ok, enc, err := isContentFile(path, r.exts)
		if err != nil {
			r.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ok {
			r.log.Debug("Skipping file, not recognized as content source", zap.String("file", path))
			return nil
		}

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		candidates = append(candidates, candidate{path: path, src: src, enc: enc})
		return nil
	})
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		r.log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	less := r.less()
	sort.SliceStable(candidates, func(i, j int) bool { return less(candidates[i].src, candidates[j].src) })

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, err := os.Open(c.path)
		if err != nil {
			r.warn(c.src, "", "unreadable", err.Error())
			r.log.Warn("Unable to open file", zap.String("file", c.path), zap.Error(err))
			continue
		}
		r.processFile(ctx, selectReader(file, c.enc), c.src)
		file.Close()
	}
	return nil
}

// processArchive scans content files inside the archive under pathIn.
func (r *run) processArchive(ctx context.Context, path, pathIn string) error {
	count := 0

	err := archive.Walk(path, pathIn, archive.LessFunc(r.less()), func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, enc, err := isContentInArchive(f, r.exts)
		if err != nil {
			r.log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !ok {
			r.log.Debug("Skipping file, not recognized as content source",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		rd, err := f.Open()
		if err != nil {
			r.warn(f.FileHeader.Name, "", "unreadable", err.Error())
			r.log.Warn("Unable to open file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer rd.Close()

		name := f.FileHeader.Name
		if cp := r.env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				r.log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", name), zap.Error(err))
			}
		}
		r.processFile(ctx, selectReader(rd, enc), name)
		return nil
	})
	if err == nil && count == 0 {
		r.log.Debug("Nothing to process", zap.String("archive", path))
	}
	return err
}

// processFile scans a single content source. Problems are recorded and the
// scan moves on - a bad file never stops the run.
func (r *run) processFile(ctx context.Context, rd io.Reader, src string) {
	if ctx.Err() != nil {
		return
	}
	r.files++

	defer func() {
		// scanner works on arbitrary input, if it ever panics we want the
		// remaining files processed
		if p := recover(); p != nil {
			r.warn(src, "", "panic", fmt.Sprint(p))
			r.log.Error("Scan ended with panic",
				zap.String("file", src), zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
		}
	}()

	data, err := io.ReadAll(rd)
	if err != nil {
		r.warn(src, "", "unreadable", err.Error())
		r.log.Warn("Unable to read file", zap.String("file", src), zap.Error(err))
		return
	}

	f, err := content.Parse(data, src, r.opts, r.log)
	switch {
	case errors.Is(err, content.ErrMissingKey):
		r.warn(src, "", "missing_key", err.Error())
		r.log.Warn("Skipping file, no key declaration", zap.String("file", src))
		return
	case errors.Is(err, content.ErrMissingAnchor):
		r.warn(src, "", "missing_anchor", err.Error())
		r.log.Warn("File has no content block, contributes nothing", zap.String("file", src))
		return
	case err != nil:
		r.warn(src, "", "failed", err.Error())
		r.log.Warn("Unable to scan file", zap.String("file", src), zap.Error(err))
		return
	}

	leaves := content.CountLeaves(f.Root)
	if !r.table.Add(f.Key, f.Root) {
		r.warn(src, f.Key, "empty", "no extractable values")
		r.log.Warn("No values extracted, key excluded from output",
			zap.String("file", src), zap.String("key", f.Key))
		return
	}

	if f.Truncated {
		r.warn(src, f.Key, "truncated", "kept partial result")
	}

	r.findings = append(r.findings, audit.Finding{File: src, Key: f.Key, Leaves: leaves})
	r.log.Info("Scanned", zap.String("file", src), zap.String("key", f.Key), zap.Int("values", leaves))

	if r.env.Rpt != nil {
		r.env.Rpt.StoreData(fmt.Sprintf("scans/%s.txt", config.SafeFileName(filepath.Base(src))), []byte(f.String()))
	}
}

func (r *run) warn(src, key, class, detail string) {
	r.warned++
	r.findings = append(r.findings, audit.Finding{File: src, Key: key, Class: class, Detail: detail})
}

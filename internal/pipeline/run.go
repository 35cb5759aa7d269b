package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"hashstage/internal/digest"
	"hashstage/internal/enrich"
	"hashstage/internal/logging"
	"hashstage/internal/manifest"
	"hashstage/internal/progress"
	"hashstage/internal/refusal"
	"hashstage/internal/witness"
)

// errInterrupted is reported when the caller's context ends mid-run.
var errInterrupted = errors.New("interrupted")

// Ledger records one outcome per run.
type Ledger interface {
	Append(ctx context.Context, rec witness.Record) error
}

// Options configures one run. Input, Output and Digester are required.
type Options struct {
	Input     io.Reader
	Output    io.Writer
	Digester  digest.Digester
	Algorithm digest.Algorithm
	Workers   int
	Progress  *progress.Reporter
	Logger    *slog.Logger

	// Ledger, when set, receives the outcome record after the run.
	Ledger Ledger
	Params witness.Params
}

// Result summarises a finished run.
type Result struct {
	Outcome    Outcome
	Refusal    *refusal.Envelope
	Records    int
	Hashed     int
	Skipped    int
	OutputHash string
}

// workItem is one parsed record with its position in the stream.
type workItem struct {
	index int
	line  int
	rec   manifest.Record
}

// processed is a record after enrichment.
type processed struct {
	line    int
	rec     manifest.Record
	hashed  bool
	ioError string
	err     error
}

// Run streams opts.Input through the hashing stage into opts.Output. On
// refusal the envelope is written to the output as the final line. The
// returned Result is final; Run never returns an error.
func Run(ctx context.Context, opts Options) Result {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "pipeline"))
	out := newHashingWriter(opts.Output)

	res := execute(ctx, opts, out, logger)
	if res.Refusal != nil {
		if err := writeEnvelope(out, res.Refusal); err != nil {
			logger.Debug("refusal envelope not written", logging.Error(err))
		}
	}
	res.OutputHash = out.Sum()
	recordWitness(ctx, opts, res, logger)
	return res
}

// Refuse emits env without reading any input, for refusals detected before a
// run can start.
func Refuse(ctx context.Context, opts Options, env *refusal.Envelope) Result {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "pipeline"))
	out := newHashingWriter(opts.Output)
	if err := writeEnvelope(out, env); err != nil {
		logger.Debug("refusal envelope not written", logging.Error(err))
	}
	res := Result{Outcome: Refusal, Refusal: env, OutputHash: out.Sum()}
	recordWitness(ctx, opts, res, logger)
	return res
}

func execute(parent context.Context, opts Options, out io.Writer, logger *slog.Logger) Result {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s := &stage{digester: opts.Digester, algorithm: opts.Algorithm.Prefix()}
	pool := NewPool(ctx, opts.Workers, s.process, logger)

	var read atomic.Int64
	c := &collector{
		out:      out,
		progress: opts.Progress,
		read:     &read,
		cancel:   cancel,
		ctx:      ctx,
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.run(pool.Results())
	}()

	// A refusal from the reader stops submissions only; every record
	// submitted before the offending line is still written ahead of the
	// envelope. Interrupts and write failures cancel ctx instead.
	env := s.feed(ctx, parent, opts.Input, pool, &read)
	pool.Close()
	wg.Wait()

	if env == nil {
		env = c.failure
	}
	if env != nil {
		logger.Info("run refused",
			logging.String("code", string(env.Refusal.Code)),
			logging.Int("records_emitted", c.emitted),
		)
		return Result{Outcome: Refusal, Refusal: env, Records: c.emitted, Hashed: c.hashed, Skipped: c.skipped}
	}

	opts.Progress.Finish(c.emitted, int(read.Load()))
	outcome := AllHashed
	if c.skipped > 0 {
		outcome = outcome.Merge(Partial)
	}
	logger.Info("run complete",
		logging.String("outcome", outcome.String()),
		logging.Int("records", c.emitted),
		logging.Int("hashed", c.hashed),
		logging.Int("skipped", c.skipped),
	)
	return Result{Outcome: outcome, Records: c.emitted, Hashed: c.hashed, Skipped: c.skipped}
}

// stage holds what every worker needs to process one record.
type stage struct {
	digester  digest.Digester
	algorithm string
}

func (s *stage) process(item workItem) processed {
	if enrich.IsAlreadySkipped(item.rec) {
		rec, err := enrich.ApplyPassthrough(item.rec)
		return processed{line: item.line, rec: rec, err: err}
	}
	path := item.rec.Path()
	sum, err := s.digester.Digest(path)
	if err != nil {
		text := digest.ErrorText(err)
		rec, enrichErr := enrich.ApplyIOFailure(item.rec, path, text)
		return processed{line: item.line, rec: rec, ioError: text, err: enrichErr}
	}
	rec, err := enrich.ApplyHashed(item.rec, sum, s.algorithm)
	return processed{line: item.line, rec: rec, hashed: true, err: err}
}

type lineRead struct {
	data []byte
	err  error
}

// feed reads input lines and submits parsed records until EOF, a refusal, or
// cancellation. Reading happens on its own goroutine so that an interrupt is
// noticed even while the input blocks.
func (s *stage) feed(ctx, parent context.Context, input io.Reader, pool *Pool[workItem, processed], read *atomic.Int64) *refusal.Envelope {
	lines := make(chan lineRead)
	go readLines(ctx, input, lines)

	lineNumber := 0
	index := 0
	for {
		var lr lineRead
		var ok bool
		select {
		case <-ctx.Done():
			if parent.Err() != nil {
				return refusal.StreamFailure(errInterrupted)
			}
			return nil
		case lr, ok = <-lines:
		}
		if !ok {
			return nil
		}
		if lr.err != nil {
			return refusal.StreamFailure(lr.err)
		}

		lineNumber++
		if manifest.IsBlank(lr.data) {
			continue
		}
		rec, err := manifest.Parse(lr.data, lineNumber)
		if err != nil {
			return parseRefusal(err)
		}
		read.Add(1)
		if err := pool.Submit(index, workItem{index: index, line: lineNumber, rec: rec}); err != nil {
			if parent.Err() != nil {
				return refusal.StreamFailure(errInterrupted)
			}
			return nil
		}
		index++
	}
}

func readLines(ctx context.Context, input io.Reader, lines chan<- lineRead) {
	defer close(lines)
	reader := bufio.NewReaderSize(input, 64*1024)
	for {
		data, err := reader.ReadBytes('\n')
		if len(data) > 0 {
			select {
			case lines <- lineRead{data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			select {
			case lines <- lineRead{err: err}:
			case <-ctx.Done():
			}
		}
		return
	}
}

func parseRefusal(err error) *refusal.Envelope {
	var failure *manifest.ParseFailure
	if !errors.As(err, &failure) {
		return refusal.New(refusal.BadInput, refusal.StreamError{Error: err.Error()})
	}
	if failure.MissingField != "" {
		return refusal.BadMissingField(failure.Line, failure.MissingField)
	}
	return refusal.BadLine(failure.Line, failure.Err)
}

// collector is the only reader of worker results and the only writer of
// output records.
type collector struct {
	ctx      context.Context
	cancel   context.CancelFunc
	out      io.Writer
	progress *progress.Reporter
	read     *atomic.Int64

	reassembler *Reassembler[processed]
	failure     *refusal.Envelope
	emitted     int
	hashed      int
	skipped     int
}

func (c *collector) run(results <-chan Indexed[processed]) {
	c.reassembler = NewReassembler[processed]()
	for res := range results {
		if c.failure != nil || c.ctx.Err() != nil {
			continue
		}
		for _, p := range c.reassembler.Submit(res.Index, res.Value) {
			if !c.emit(p) {
				break
			}
		}
	}
}

// emit writes one record. It reports false and cancels the run on failure.
func (c *collector) emit(p processed) bool {
	if c.ctx.Err() != nil {
		return false
	}
	if p.err != nil {
		c.fail(refusal.BadLine(p.line, p.err.Error()))
		return false
	}
	line := make([]byte, 0, len(p.rec.Bytes())+1)
	line = append(line, p.rec.Bytes()...)
	line = append(line, '\n')
	if _, err := c.out.Write(line); err != nil {
		c.fail(refusal.StreamFailure(err))
		return false
	}

	c.emitted++
	if p.hashed {
		c.hashed++
	}
	if enrich.IsAlreadySkipped(p.rec) {
		c.skipped++
	}
	if p.ioError != "" {
		c.progress.Warn(p.rec.Path(), p.ioError)
	}
	c.progress.Progress(c.emitted, int(c.read.Load()))
	return true
}

func (c *collector) fail(env *refusal.Envelope) {
	c.failure = env
	c.cancel()
}

func writeEnvelope(w io.Writer, env *refusal.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write refusal: %w", err)
	}
	return nil
}

func recordWitness(ctx context.Context, opts Options, res Result, logger *slog.Logger) {
	if opts.Ledger == nil {
		return
	}
	rec := witness.NewRecord(res.Outcome.String(), res.Outcome.ExitCode(), res.OutputHash, opts.Params, time.Now())
	if err := opts.Ledger.Append(context.WithoutCancel(ctx), rec); err != nil {
		logging.WarnWithContext(logger, "witness ledger append failed", "witness_append_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the witness path and its permissions"),
			logging.String(logging.FieldImpact, "this run is missing from the audit ledger"),
		)
	}
}
